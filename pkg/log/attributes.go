package log

// Standard attribute keys for classifier training and scoring logs. Using
// fixed keys keeps logs filterable across the four trainer families.
const (
	// TrainerKey identifies the trainer producing the log record.
	// Examples: "GradientTrainer", "NaiveBayesTrainer", "SVMTrainer"
	TrainerKey = "trainer"

	// OperationKey specifies the operation being performed.
	// Standard values: "train", "classification", "classify", "accuracy"
	OperationKey = "ml.operation"

	// IterationKey records the current optimization pass.
	IterationKey = "train.iteration"

	// InstancesKey indicates the number of labeled instances consumed.
	InstancesKey = "data.instances"

	// LabelsKey indicates the size of the categorical label domain.
	LabelsKey = "data.labels"

	// FeaturesKey indicates the feature-vector dimension.
	FeaturesKey = "data.features"

	// LossKey records the objective value after a pass.
	LossKey = "train.loss"

	// AccuracyKey records a train or test accuracy measurement.
	AccuracyKey = "eval.accuracy"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
