package httpadapter

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joonhokim/examgen/internal/core/domain"
)

const (
	sheetSummary      = "요약"
	sheetByTopic      = "주제별"
	sheetByDifficulty = "난이도별"
	sheetWrongAnswers = "오답노트"
)

// buildProgressWorkbook renders the study history as the four-sheet
// workbook the review flow expects: totals, per-topic and
// per-difficulty accuracy, and the wrong-answer notebook.
func buildProgressWorkbook(summary *domain.ProgressSummary, wrong []domain.Attempt) (*excelize.File, error) {
	book := excelize.NewFile()
	if err := book.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, sheet := range []string{sheetByTopic, sheetByDifficulty, sheetWrongAnswers} {
		if _, err := book.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}

	summaryRows := [][]any{
		{"항목", "값"},
		{"총 풀이 수", summary.Total},
		{"정답 수", summary.Correct},
		{"정답률(%)", roundPercent(summary.Accuracy)},
	}
	if err := writeRows(book, sheetSummary, summaryRows); err != nil {
		return nil, err
	}

	topics := make([]string, 0, len(summary.ByTopic))
	for topic := range summary.ByTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	topicRows := [][]any{{"주제", "풀이 수", "정답 수", "정답률(%)"}}
	for _, topic := range topics {
		stats := summary.ByTopic[topic]
		topicRows = append(topicRows, []any{topic, stats.Total, stats.Correct, roundPercent(stats.Accuracy)})
	}
	if err := writeRows(book, sheetByTopic, topicRows); err != nil {
		return nil, err
	}

	difficultyRows := [][]any{{"난이도", "풀이 수", "정답 수", "정답률(%)"}}
	for _, d := range domain.Difficulties() {
		stats := summary.ByDifficulty[d]
		difficultyRows = append(difficultyRows, []any{string(d), stats.Total, stats.Correct, roundPercent(stats.Accuracy)})
	}
	if err := writeRows(book, sheetByDifficulty, difficultyRows); err != nil {
		return nil, err
	}

	wrongRows := [][]any{{"문제 ID", "주제", "난이도", "문제", "제출한 답", "정답", "채점 시각"}}
	for _, a := range wrong {
		wrongRows = append(wrongRows, []any{
			a.QuestionID,
			a.Topic,
			string(a.Difficulty),
			a.Question,
			a.Submitted,
			a.Answer,
			a.UpdatedAt.Format(time.DateTime),
		})
	}
	if err := writeRows(book, sheetWrongAnswers, wrongRows); err != nil {
		return nil, err
	}

	return book, nil
}

func writeRows(book *excelize.File, sheet string, rows [][]any) error {
	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("row %d of %s: %w", i+1, sheet, err)
		}
		if err := book.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

func roundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}
