package runtime

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// executeBody is the JSON body accepted by the execute endpoints.
type executeBody struct {
	Parameters     map[string]any `json:"parameters"`
	Items          []Item         `json:"items"`
	ContinueOnFail bool           `json:"continueOnFail"`
}

// optionsBody is the JSON body accepted by the options endpoint.
type optionsBody struct {
	Parameters map[string]any `json:"parameters"`
}

// NewHttpHandler registers the host HTTP surface on g. Stored workflows from
// app are exposed under /workflows/:id.
func NewHttpHandler(app *App, executor *Executor, g *gin.Engine) {
	g.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g.GET("/nodes", listNodes(app.Container))

	nodes := g.Group("/nodes/:node")
	nodes.POST("/execute", handleExecute(executor))
	nodes.POST("/options/:method", handleOptions(executor))

	g.POST("/workflows/:id", handleWorkflow(app, executor))
}

func listNodes(container *Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		nodes := make([]gin.H, 0)
		for _, name := range container.Nodes() {
			entry := gin.H{
				"name":    name,
				"options": container.OptionMethods(name),
			}
			node, _ := container.GetNode(name)
			if lister, ok := node.(OperationLister); ok {
				entry["operations"] = lister.Operations()
			}
			nodes = append(nodes, entry)
		}
		c.JSON(http.StatusOK, gin.H{"nodes": nodes})
	}
}

func handleExecute(executor *Executor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body executeBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, wrongBodyFormatRes)
			return
		}

		runAndRespond(c, executor, Request{
			Node:           c.Param("node"),
			Parameters:     body.Parameters,
			Items:          body.Items,
			ContinueOnFail: body.ContinueOnFail,
		})
	}
}

func handleWorkflow(app *App, executor *Executor) gin.HandlerFunc {
	return func(c *gin.Context) {
		workflow, ok := app.Workflows[c.Param("id")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Unknown workflow: " + c.Param("id")})
			return
		}

		req := RequestFromWorkflow(workflow)

		// An optional body replaces the stored items.
		if c.Request.ContentLength != 0 {
			var body executeBody
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, wrongBodyFormatRes)
				return
			}
			if body.Items != nil {
				req.Items = body.Items
			}
		}

		runAndRespond(c, executor, req)
	}
}

func handleOptions(executor *Executor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body optionsBody
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, wrongBodyFormatRes)
				return
			}
		}

		options, err := executor.LoadOptions(c.Request.Context(), Request{
			Node:       c.Param("node"),
			Parameters: body.Parameters,
		}, c.Param("method"))
		if err != nil {
			status := statusFor(err)
			slog.Error("Loading options failed",
				"node", c.Param("node"),
				"method", c.Param("method"),
				"status", status,
				"error", err.Error())
			c.JSON(status, gin.H{"message": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"options": options})
	}
}

var wrongBodyFormatRes = gin.H{"message": "Wrong request body format"}

func runAndRespond(c *gin.Context, executor *Executor, req Request) {
	result, err := executor.Run(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		slog.Error("Node execution failed",
			"node", req.Node,
			"path", c.Request.URL.Path,
			"status", status,
			"error", err.Error())
		c.JSON(status, gin.H{
			"executionId": result.ExecutionID,
			"message":     "Error in node execution: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

func statusFor(err error) int {
	var nodeErr *NodeError
	switch {
	case errors.Is(err, ErrNodeNotFound), errors.Is(err, ErrOptionsMethodNotFound):
		return http.StatusNotFound
	case errors.As(err, &nodeErr) && nodeErr.Kind == ErrorKindParameter:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
