package ai

import "context"

// AnalysisInput contains the evidence artefacts to judge.
type AnalysisInput struct {
	ImageURL       string
	Description    string
	ChallengeTitle string
}

// Analyzer produces an advisory judgement of how closely a student's photo
// corresponds to their description. The result never gates approval.
type Analyzer interface {
	AnalyzeEvidence(ctx context.Context, input AnalysisInput) (string, error)
}

// ChatTurn is one prior line of a coach conversation.
type ChatTurn struct {
	Role    string
	Content string
}

// Coach generates chatbot replies for the eco-coach and teacher-bot personas.
type Coach interface {
	Reply(ctx context.Context, persona string, history []ChatTurn, message string) (string, error)
}
