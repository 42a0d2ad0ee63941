package plugin

import (
	"github.com/sflowg/campaignmonitor/runtime"
)

// Node is the interface every host node implements.
type Node = runtime.Node

// Initializer is implemented by nodes that set up clients or connections at
// container startup. A failing Initialize stops the host from starting.
type Initializer = runtime.Initializer

// Shutdowner is implemented by nodes that release resources on shutdown.
type Shutdowner = runtime.Shutdowner

// OperationLister is implemented by nodes that enumerate their operations.
type OperationLister = runtime.OperationLister
