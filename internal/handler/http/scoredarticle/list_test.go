package scoredarticle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"papersorter/internal/common/pagination"
	"papersorter/internal/domain/entity"
	"papersorter/internal/handler/http/scoredarticle"
	"papersorter/internal/repository"
)

type fakeScoreRepository struct {
	rows  []repository.ScoredArticle
	total int64
}

func (f *fakeScoreRepository) UpsertBatch(ctx context.Context, scores []*entity.PredictedScore) error {
	return nil
}
func (f *fakeScoreRepository) Get(ctx context.Context, articleID, modelID int64) (*entity.PredictedScore, error) {
	return nil, nil
}
func (f *fakeScoreRepository) DeleteByArticleID(ctx context.Context, articleID int64) error {
	return nil
}
func (f *fakeScoreRepository) CoverageGap(ctx context.Context, modelID int64) (int64, error) {
	return 0, nil
}
func (f *fakeScoreRepository) ListScored(ctx context.Context, modelID int64, minScore float64, limit, offset int) ([]repository.ScoredArticle, error) {
	return f.rows, nil
}
func (f *fakeScoreRepository) CountScored(ctx context.Context, modelID int64, minScore float64) (int64, error) {
	if f.total != 0 {
		return f.total, nil
	}
	return int64(len(f.rows)), nil
}

func TestListHandler_Success(t *testing.T) {
	repo := &fakeScoreRepository{rows: []repository.ScoredArticle{
		{Article: &entity.Article{ID: 1, Title: "paper one"}, Score: 0.9},
	}}
	handler := scoredarticle.ListHandler{Scores: repo}

	req := httptest.NewRequest(http.MethodGet, "/articles/scored?model_id=1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var out pagination.Response[scoredarticle.DTO]
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Data) != 1 || out.Data[0].ArticleID != 1 {
		t.Fatalf("out.Data = %+v, want one row with ArticleID=1", out.Data)
	}
	if out.Pagination.Total != 1 || out.Pagination.Page != 1 {
		t.Fatalf("out.Pagination = %+v, want Total=1, Page=1", out.Pagination)
	}
}

func TestListHandler_MissingModelID(t *testing.T) {
	handler := scoredarticle.ListHandler{Scores: &fakeScoreRepository{}}

	req := httptest.NewRequest(http.MethodGet, "/articles/scored", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestListHandler_LimitOverMaxRejected(t *testing.T) {
	repo := &fakeScoreRepository{}
	handler := scoredarticle.ListHandler{Scores: repo}

	req := httptest.NewRequest(http.MethodGet, "/articles/scored?model_id=1&limit=9999", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestListHandler_InvalidPage(t *testing.T) {
	handler := scoredarticle.ListHandler{Scores: &fakeScoreRepository{}}

	req := httptest.NewRequest(http.MethodGet, "/articles/scored?model_id=1&page=-1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestListHandler_SecondPageUsesOffset(t *testing.T) {
	repo := &fakeScoreRepository{total: 45}
	handler := scoredarticle.ListHandler{Scores: repo}

	req := httptest.NewRequest(http.MethodGet, "/articles/scored?model_id=1&page=2&limit=20", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var out pagination.Response[scoredarticle.DTO]
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Pagination.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3 (45 rows at 20/page)", out.Pagination.TotalPages)
	}
}
