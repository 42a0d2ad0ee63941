package plugin

import "github.com/sflowg/campaignmonitor/runtime"

// Execution is the host context passed to Execute and to option providers.
// It implements context.Context, carries the input items, the per-item
// parameter resolver, the credential store and a logger.
//
//	exec.ID               // execution UUID
//	exec.Items            // input items, in order
//	exec.ContinueOnFail   // record failures instead of aborting
//	exec.Parameter("email", i)
//	exec.Credentials("campaignMonitorApi")
//	exec.Logger.InfoContext(exec, "...")
type Execution = runtime.Execution

// Item is one input JSON record.
type Item = runtime.Item

// Record is one output JSON record.
type Record = runtime.Record

// Option is one dropdown entry returned by an option provider.
type Option = runtime.Option
