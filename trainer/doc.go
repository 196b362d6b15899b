// Package trainer provides high-level training orchestration for Neurlang networks.
// A compiled Model is fitted on batched data sources one hashtron per step,
// evaluated with the metrics package and checkpointed by epoch callbacks.
package trainer
