package campaignmonitor

import (
	"context"
	"net/url"
	"reflect"
	"strconv"

	"github.com/Jeffail/gabs/v2"
)

const pageSize = 500

// pageQuery applies the fixed paging policy over the caller's query.
func pageQuery(query url.Values, page int) url.Values {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("orderfield", "email")
	q.Set("orderdirection", "asc")
	q.Set("includetrackingpreference", "true")
	return q
}

// fetchAll walks a paged list endpoint and returns the elements of field from
// every page in arrival order.
//
// The walk continues only while the page carried records and the reported
// PageNumber equals TotalNumberOfRecords. This compares a page index with a
// record count, so in practice it stops after the first page unless the two
// happen to match.
func fetchAll(ctx context.Context, do func(context.Context, Request) (any, error), req Request, field string) ([]any, error) {
	var accumulated []any

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageReq := req
		pageReq.Query = pageQuery(req.Query, page)

		resp, err := do(ctx, pageReq)
		if err != nil {
			return nil, err
		}

		container := gabs.Wrap(resp)
		records, _ := container.Path(field).Data().([]any)
		accumulated = append(accumulated, records...)

		if len(records) == 0 {
			break
		}
		if !reflect.DeepEqual(container.Path("PageNumber").Data(), container.Path("TotalNumberOfRecords").Data()) {
			break
		}
	}

	return accumulated, nil
}
