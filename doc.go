// Package factorie provides a framework for training and applying
// discriminative classifiers over categorical variables.
//
// The classify package is the core: a shared data model (categorical
// domains, label variables, sparse feature vectors), a uniform Classifier
// contract, and four interchangeable trainer families — iterative gradient
// optimization with pluggable optimizers and objectives, smoothed Naive
// Bayes counting, one-vs-rest linear SVMs, and decision-tree induction.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/melisabok/factorie/classify"
//	)
//
//	func main() {
//	    labels := classify.NewCategoricalDomain("ham", "spam")
//	    features := classify.NewVectorDomain(2)
//
//	    vectors := map[classify.LabelVariable]*classify.FeatureVector{}
//	    featureOf := func(v classify.LabelVariable) *classify.FeatureVector {
//	        return vectors[v]
//	    }
//
//	    var train []classify.LabeledVariable
//	    for target, active := range map[int]int{0: 0, 1: 1} {
//	        l := classify.NewGoldLabel(labels, target)
//	        fv := classify.NewFeatureVector(features)
//	        fv.Set(active, 1)
//	        vectors[l] = fv
//	        train = append(train, l)
//	    }
//
//	    c := classify.NewLinearClassifier(labels, features, featureOf)
//	    if err := classify.NewNaiveBayesTrainer().Train(c, train); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    acc, _ := c.Accuracy(train)
//	    fmt.Printf("train accuracy: %.2f\n", acc)
//	}
//
// # Packages
//
//   - classify: data model, Classifier contract, the four trainers,
//     optimizers, objectives, training callbacks and model persistence
//   - metrics: accuracy, confusion matrix, precision/recall over predicted
//     and gold category indices
//   - core/parallel: chunked worker helpers used for batch scoring,
//     gradient accumulation and one-vs-rest training
//   - core/model: fitted-state tracking and gob persistence
//   - pkg/errors: structured errors and the advisory warning system
//   - pkg/log: slog setup with stack-trace-aware error formatting
package factorie
