package wizard

import (
	"context"

	"go.uber.org/zap"
)

// GuardEvaluator answers whether a stage's prerequisites hold for a session.
// Evaluation is advisory: it never mutates state and never returns an error;
// any failure to evaluate is logged and reported as false.
type GuardEvaluator struct {
	store  SessionStore
	logger *zap.Logger
}

// NewGuardEvaluator builds a guard evaluator over the given store.
func NewGuardEvaluator(store SessionStore, logger *zap.Logger) *GuardEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardEvaluator{store: store, logger: logger}
}

// EvaluateStage reports whether the session satisfies the stage's completion
// prerequisites. An unknown or inactive session fails every guard.
func (g *GuardEvaluator) EvaluateStage(ctx context.Context, sessionID string, stage Stage) bool {
	sess, err := g.store.Get(ctx, sessionID)
	if err != nil {
		g.logger.Debug("guard: session lookup failed",
			zap.String("session_id", sessionID),
			zap.Int("stage", int(stage)),
			zap.Error(err))
		return false
	}
	return stageGuardHolds(sess, stage)
}

// stageGuardHolds checks stage prerequisites against an already-loaded
// session. The service calls this under the session lock so the guard and
// the transition it protects see the same state.
func stageGuardHolds(sess Session, stage Stage) bool {
	if !sess.Active {
		return false
	}
	switch stage {
	case Stage1ClientAndBasics:
		return hasExtended(sess, KeySelectedClientID) &&
			hasExtended(sess, KeyReceiptNumber) &&
			hasExtended(sess, KeyUniqueTag) &&
			hasExtended(sess, KeyBranchID)
	case Stage2Items:
		return len(sess.Items) > 0
	case Stage3OrderParams:
		return StageOf(sess.State) >= Stage3OrderParams
	case Stage4Confirmation:
		return StageOf(sess.State) == Stage4Confirmation || sess.State == StateCompleted
	default:
		return false
	}
}

func hasExtended(sess Session, key string) bool {
	v, ok := sess.Extended[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return false
	}
	return true
}
