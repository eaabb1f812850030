package reviews

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"contract-validator/internal/analysis"
	"contract-validator/internal/contracts"
	"contract-validator/internal/docx"
	"contract-validator/internal/docx/docxtest"
	"contract-validator/internal/legalcontext"
	"contract-validator/internal/llm"
)

type scriptedChat struct {
	replies []string
	err     error
	calls   int
}

func (s *scriptedChat) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	i := s.calls
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if i >= len(s.replies) {
		return "", errors.New("unexpected call")
	}
	return s.replies[i], nil
}

const (
	contextSummary = `{"topic":"Master services","jurisdiction":"New York","summary":"A services agreement."}`
	contextLaws    = `[{"title":"NY UCC 2-719","description":"Limitation of remedies","relevance":"Liability caps","source":"NY UCC"}]`
	contextCases   = `{"cases":[{"title":"Kalisch-Jarcho v. City of New York","description":"Exculpatory clauses","relevance":"Gross negligence","source":"58 N.Y.2d 377"}]}`
	analysisReply  = "Here is the analysis:\n```json\n" + `{"issues":[{"type":"liability","severity":"High","description":"Unlimited liability","location":{"paragraph":"P2","text":"liable for all obligations"},"suggestion":"Cap liability at fees paid"}],"suggestions":[{"category":"clarity","description":"Attach a statement of work","current":"","suggested":"Add Exhibit A"}],"risk_score":72}` + "\n```"
)

func contractFixture() []byte {
	return docxtest.Build(
		docxtest.Para("MASTER SERVICES AGREEMENT between the Parties, effective date January 1, 2024."),
		docxtest.Para("Supplier shall be liable for all obligations without limitation."),
		docxtest.P(
			docxtest.Run("Payment is due within "),
			docxtest.Del("Jane Roe", "2024-01-02T10:00:00Z", "thirty"),
			docxtest.Ins("Jane Roe", "2024-01-02T10:00:00Z", "sixty"),
			docxtest.Run(" days. Termination requires notice."),
		),
		docxtest.Para("Governing law: New York. In witness whereof, signature of the parties."),
	)
}

type fixture struct {
	svc      *Service
	context  *scriptedChat
	analysis *scriptedChat
}

func newFixture() fixture {
	ctxChat := &scriptedChat{replies: []string{contextSummary, contextLaws, contextCases}}
	anChat := &scriptedChat{replies: []string{analysisReply}}
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	return fixture{
		svc: &Service{
			Reader:    docx.NewReader(0, nil),
			Validator: contracts.HeuristicValidator{},
			Context:   &legalcontext.Service{Client: ctxChat, Model: "sonar"},
			Analyzer:  &analysis.Service{Client: anChat, Model: "claude", Now: func() time.Time { return at }},
		},
		context:  ctxChat,
		analysis: anChat,
	}
}

func TestReviewEndToEnd(t *testing.T) {
	f := newFixture()
	got, err := f.svc.Review(context.Background(), Request{FileName: "msa.docx", Data: contractFixture(), Jurisdiction: "New York"})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}

	if got.SchemaVersion != contracts.SchemaVersion {
		t.Fatalf("unexpected schema version %q", got.SchemaVersion)
	}
	if len(got.Issues) != 1 || len(got.Suggestions) != 1 {
		t.Fatalf("expected 1 issue and 1 suggestion, got %d/%d", len(got.Issues), len(got.Suggestions))
	}
	if got.RiskScore < 0 || got.RiskScore > 100 {
		t.Fatalf("risk score out of range: %d", got.RiskScore)
	}
	if got.Issues[0].Location.Paragraph != 2 || got.Issues[0].Severity != contracts.SeverityHigh {
		t.Fatalf("unexpected issue %+v", got.Issues[0])
	}
	if got.LegalContext == nil || got.LegalContext.Topic != "Master services" || len(got.LegalContext.Laws) != 1 || len(got.LegalContext.Cases) != 1 {
		t.Fatalf("unexpected legal context %+v", got.LegalContext)
	}

	if len(got.Redlines) != 3 {
		t.Fatalf("expected 3 redlines, got %d: %+v", len(got.Redlines), got.Redlines)
	}
	first := got.Redlines[0]
	if first.ParagraphNumber != 2 || first.Author != contracts.AIAuthor || first.ChangeType != contracts.ChangeModification {
		t.Fatalf("unexpected synthesized redline %+v", first)
	}
	if first.Date != "2024-06-01T09:30:00Z" || first.ModifiedText != "Cap liability at fees paid" {
		t.Fatalf("unexpected synthesized redline content %+v", first)
	}
	if got.Redlines[1].ChangeType != contracts.ChangeDeletion || got.Redlines[1].OriginalText != "thirty" || got.Redlines[1].Author != "Jane Roe" {
		t.Fatalf("unexpected native deletion %+v", got.Redlines[1])
	}
	if got.Redlines[2].ChangeType != contracts.ChangeInsertion || got.Redlines[2].ModifiedText != "sixty" {
		t.Fatalf("unexpected native insertion %+v", got.Redlines[2])
	}
	if f.context.calls != 3 || f.analysis.calls != 1 {
		t.Fatalf("unexpected call counts context=%d analysis=%d", f.context.calls, f.analysis.calls)
	}
}

func TestReviewRejectsNonContract(t *testing.T) {
	f := newFixture()
	data := docxtest.Paragraphs("Grocery list", "Eggs and milk")
	_, err := f.svc.Review(context.Background(), Request{FileName: "list.docx", Data: data})
	if !errors.Is(err, contracts.ErrNotAContract) {
		t.Fatalf("expected ErrNotAContract, got %v", err)
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageValidate {
		t.Fatalf("expected validate stage error, got %v", err)
	}
	if f.context.calls != 0 {
		t.Fatalf("context service must not run for rejected documents")
	}
}

func TestReviewSkipsValidationWhenDisabled(t *testing.T) {
	f := newFixture()
	f.svc.Validator = nil
	data := docxtest.Paragraphs("Grocery list", "Eggs and milk")
	if _, err := f.svc.Review(context.Background(), Request{FileName: "list.docx", Data: data}); err != nil {
		t.Fatalf("Review: %v", err)
	}
}

func TestReviewStageErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		req   Request
		stage string
		want  error
	}{
		{
			name:  "unsupported extension",
			req:   Request{FileName: "msa.pdf", Data: []byte("%PDF")},
			stage: StageParse,
			want:  docx.ErrUnsupportedFileType,
		},
		{
			name:  "corrupt document",
			req:   Request{FileName: "msa.docx", Data: []byte("not a zip")},
			stage: StageParse,
			want:  docx.ErrInvalidDocument,
		},
		{
			name:  "context upstream failure",
			setup: func(f *fixture) { f.context.err = errors.New("connection reset") },
			req:   Request{FileName: "msa.docx", Data: contractFixture()},
			stage: StageLegalContext,
		},
		{
			name:  "analysis schema failure",
			setup: func(f *fixture) { f.analysis.replies = []string{`{"issues":[]}`} },
			req:   Request{FileName: "msa.docx", Data: contractFixture()},
			stage: StageAnalysis,
			want:  analysis.ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(&f)
			}
			_, err := f.svc.Review(context.Background(), tt.req)
			var se *StageError
			if !errors.As(err, &se) || se.Stage != tt.stage {
				t.Fatalf("expected %s stage error, got %v", tt.stage, err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !strings.HasPrefix(err.Error(), tt.stage+": ") {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"file type", &StageError{Stage: StageParse, Err: docx.ErrUnsupportedFileType}, 400, contracts.CodeInvalidFileType},
		{"too large", &StageError{Stage: StageParse, Err: docx.ErrFileTooLarge}, 400, contracts.CodeFileTooLarge},
		{"document", &StageError{Stage: StageParse, Err: docx.ErrInvalidDocument}, 400, contracts.CodeDocument},
		{"not a contract", &StageError{Stage: StageValidate, Err: contracts.ErrNotAContract}, 400, contracts.CodeInvalidContract},
		{"upstream", &StageError{Stage: StageAnalysis, Err: errors.New("boom")}, 502, contracts.CodeProcessing},
		{"internal", errors.New("boom"), 500, contracts.CodeProcessing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err, 1024)
			if f.Status != tt.status || f.Code != tt.code {
				t.Fatalf("Classify = %d %s, want %d %s", f.Status, f.Code, tt.status, tt.code)
			}
		})
	}
}
