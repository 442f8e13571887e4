// Package srs implements the spaced-repetition scheduling engine and
// the learning-stage classifier.
//
// Review is a pure function over an SM-2-derived state: it never reads
// the clock, never touches storage, and is total for any valid
// performance signal. Callers validate the signal before invoking it.
//
// StageOf is a selector-only heuristic over the same state. It is
// deliberately distinct from the persisted status the engine computes:
// the two diverge in edge cases (a record with status mastered and a
// 25-day interval classifies as review, not mastered) and that
// divergence is preserved, not reconciled.
package srs
