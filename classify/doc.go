// Package classify provides a uniform abstraction for scoring categorical
// variables from observed features, and four trainers that fit the scoring
// parameters from labeled data: iterative gradient optimization, one-pass
// smoothed Naive Bayes counting, one-vs-rest binary SVM fitting, and
// decision-tree induction.
//
// Every trainer consumes labeled variables plus a label-to-features mapping
// and produces (or mutates) a Classifier; classification, batch
// classification and accuracy measurement then work identically regardless
// of which trainer produced the model.
//
// The weight matrix of a LinearClassifier is the only long-lived shared
// mutable resource. Exactly one trainer invocation may write it at a time,
// and scoring concurrent with an in-progress training pass is not
// synchronized internally; callers serialize training against scoring.
package classify
