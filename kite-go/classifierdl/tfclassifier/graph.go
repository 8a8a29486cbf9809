package tfclassifier

import (
	"github.com/kiteco/docclassifier/kite-golib/envutil"
)

// GraphSpec names the operations of the classifier graph
type GraphSpec struct {
	// feeds
	Inputs       string
	Labels       string
	LearningRate string
	Dropout      string

	// fetches
	Loss     string
	Accuracy string
	Outputs  string

	// training target
	Optimizer string

	// checkpointing: feed the path prefix to SaveFilename and run Save
	SaveFilename string
	Save         string
}

// DefaultGraphSpec returns the op names of the bundled classifier graph
func DefaultGraphSpec() GraphSpec {
	return GraphSpec{
		Inputs:       "inputs",
		Labels:       "labels",
		LearningRate: "lr",
		Dropout:      "dp",
		Loss:         "loss/Mean",
		Accuracy:     "accuracy/Mean",
		Outputs:      "softmax/Softmax",
		Optimizer:    "optimizer_adam/Adam",
		SaveFilename: "save/Const",
		Save:         "save/control_dependency",
	}
}

// trainingOps are the ops Fit and Predict cannot work without
func (g GraphSpec) trainingOps() []string {
	return []string{g.Inputs, g.Labels, g.LearningRate, g.Loss, g.Accuracy, g.Outputs, g.Optimizer}
}

// DefaultBaseModelPath is the bundled base model under $KITE_RESOURCES
// (default /var/kite/resources)
func DefaultBaseModelPath() string {
	return envutil.ResourcePath("classifierdl", "classifierdl_base.zip")
}
