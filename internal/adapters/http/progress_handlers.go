package httpadapter

import (
	"log/slog"
	"net/http"
)

func (rt *Router) getProgressSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.progress.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) getWeakTopics(w http.ResponseWriter, r *http.Request) {
	weak, err := rt.progress.WeakTopics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weak_topics": weak})
}

func (rt *Router) getWrongAnswers(w http.ResponseWriter, r *http.Request) {
	wrong, err := rt.progress.WrongAnswers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wrong_answers": wrong})
}

func (rt *Router) exportProgress(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.progress.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	wrong, err := rt.progress.WrongAnswers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	book, err := buildProgressWorkbook(summary, wrong)
	if err != nil {
		writeError(w, err)
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="study_progress.xlsx"`)
	if _, err := book.WriteTo(w); err != nil {
		slog.Error("write progress workbook", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

func (rt *Router) toggleBookmark(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	bookmarked, err := rt.progress.ToggleBookmark(r.Context(), questionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question_id": questionID, "bookmarked": bookmarked})
}

func (rt *Router) listBookmarks(w http.ResponseWriter, r *http.Request) {
	questions, err := rt.progress.Bookmarks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": questions})
}
