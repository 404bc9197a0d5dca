package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joonhokim/examgen/internal/core/domain"
)

func TestSearchMergesRetrievedFragments(t *testing.T) {
	retriever := &fakeRetriever{fragments: []domain.Fragment{
		{SourceID: "a.pdf", Text: "one", Score: 0.9},
		{SourceID: "a.pdf", Text: "two", Score: 0.7},
		{SourceID: "b.pdf", Text: "three", Score: 0.75},
	}}
	uc := NewSearchUseCase(retriever, &fakeGenerator{}, 0, 0)

	docs, err := uc.Search(context.Background(), "ec2", 0, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 merged documents, got %d", len(docs))
	}
	if docs[0].SourceID != "a.pdf" {
		t.Fatalf("expected corroborated source first, got %s", docs[0].SourceID)
	}
	if docs[0].Text != "one\ntwo" {
		t.Fatalf("expected joined text, got %q", docs[0].Text)
	}
}

func TestSearchTreatsUnavailableRetrievalAsEmpty(t *testing.T) {
	retriever := &fakeRetriever{err: domain.WrapError(domain.ErrRetrievalUnavailable, "qdrant search", errors.New("connection refused"))}
	uc := NewSearchUseCase(retriever, &fakeGenerator{}, 0, 0)

	docs, err := uc.Search(context.Background(), "ec2", 0, 0)
	if err != nil {
		t.Fatalf("Search() error = %v, want graceful empty result", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty result, got %d", len(docs))
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	uc := NewSearchUseCase(&fakeRetriever{}, &fakeGenerator{}, 0, 0)
	if _, err := uc.Search(context.Background(), "   ", 0, 0); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("Search() error = %v, want invalid input kind", err)
	}
}

func TestSearchHonorsRequestThreshold(t *testing.T) {
	retriever := &fakeRetriever{fragments: []domain.Fragment{
		{SourceID: "a.pdf", Text: "one", Score: 0.9},
	}}
	uc := NewSearchUseCase(retriever, &fakeGenerator{}, 0, 0)

	if _, err := uc.Search(context.Background(), "ec2", 0, 0.8); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(retriever.thresholds) != 1 || retriever.thresholds[0] != 0.8 {
		t.Fatalf("expected request threshold 0.8 passed to retriever, got %v", retriever.thresholds)
	}

	if _, err := uc.Search(context.Background(), "ec2", 0, 0); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if retriever.thresholds[1] != 0.50 {
		t.Fatalf("expected default threshold 0.50, got %v", retriever.thresholds[1])
	}
}

func TestAskGroundsAnswerInContext(t *testing.T) {
	retriever := &fakeRetriever{fragments: []domain.Fragment{
		{SourceID: "vpc.pdf", Text: "VPC는 가상 네트워크입니다.", Score: 0.8},
	}}
	gen := &fakeGenerator{textResponses: []string{"  VPC는 가상 네트워크입니다. [1]  "}}
	uc := NewSearchUseCase(retriever, gen, 0, 0)

	answer, err := uc.Ask(context.Background(), "VPC란 무엇인가?", 0)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != "VPC는 가상 네트워크입니다. [1]" {
		t.Fatalf("expected trimmed answer text, got %q", answer.Text)
	}
	if len(answer.Sources) != 1 || answer.Sources[0].SourceID != "vpc.pdf" {
		t.Fatalf("expected sources echoed, got %+v", answer.Sources)
	}
	prompt := gen.prompts[len(gen.prompts)-1]
	if !strings.Contains(prompt, "[1] FILE: vpc.pdf") {
		t.Fatalf("expected numbered context block in prompt, got %q", prompt)
	}
	if !strings.Contains(prompt, "Question: VPC란 무엇인가?") {
		t.Fatalf("expected question in prompt, got %q", prompt)
	}
}

func TestAskDeletesCitationsOutsideRetrievedSet(t *testing.T) {
	retriever := &fakeRetriever{fragments: []domain.Fragment{
		{SourceID: "vpc.pdf", Text: "VPC는 가상 네트워크입니다.", Score: 0.8},
	}}
	gen := &fakeGenerator{textResponses: []string{"서브넷은 VPC를 나눕니다 [1][7]."}}
	uc := NewSearchUseCase(retriever, gen, 0, 0)

	answer, err := uc.Ask(context.Background(), "서브넷이란?", 0)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != "서브넷은 VPC를 나눕니다 [1]." {
		t.Fatalf("expected out-of-range citation deleted, got %q", answer.Text)
	}
}

func TestAskWithEmptyCorpusStillAnswers(t *testing.T) {
	retriever := &fakeRetriever{}
	gen := &fakeGenerator{textResponses: []string{"문서에서 근거를 찾지 못했습니다."}}
	uc := NewSearchUseCase(retriever, gen, 0, 0)

	answer, err := uc.Ask(context.Background(), "미지의 주제?", 0)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("expected no sources, got %+v", answer.Sources)
	}
	prompt := gen.prompts[len(gen.prompts)-1]
	if !strings.Contains(prompt, "No relevant documents found.") {
		t.Fatalf("expected empty-context placeholder in prompt, got %q", prompt)
	}
}
