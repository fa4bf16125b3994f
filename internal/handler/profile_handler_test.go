package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

type fakeCounselorSrv struct {
	created   bool
	deleteErr error
}

func (f *fakeCounselorSrv) List(context.Context) ([]models.CounselorWithTopics, error) {
	return []models.CounselorWithTopics{}, nil
}

func (f *fakeCounselorSrv) Get(_ context.Context, nik string) (*models.CounselorWithTopics, error) {
	return &models.CounselorWithTopics{Counselor: models.Counselor{NIK: nik}}, nil
}

func (f *fakeCounselorSrv) Update(_ context.Context, _ *models.JWTClaims, nik string, req dto.UpdateCounselorRequest) (*models.Counselor, error) {
	return &models.Counselor{NIK: nik, Name: req.Name}, nil
}

func (f *fakeCounselorSrv) Delete(context.Context, *models.JWTClaims, string) error {
	return f.deleteErr
}

func (f *fakeCounselorSrv) AddExpertise(_ context.Context, _ *models.JWTClaims, nik string, req dto.AddExpertiseRequest) (*dto.ExpertiseResult, error) {
	return &dto.ExpertiseResult{CounselorNIK: nik, TopicID: req.TopicID, Created: f.created}, nil
}

func (f *fakeCounselorSrv) RemoveExpertise(context.Context, *models.JWTClaims, string, string) error {
	return nil
}

func (f *fakeCounselorSrv) ListIdle(context.Context) ([]models.Counselor, error) {
	return []models.Counselor{}, nil
}

func (f *fakeCounselorSrv) SessionSummary(context.Context) ([]models.CounselorSessionSummary, error) {
	return []models.CounselorSessionSummary{}, nil
}

type fakeTopicSrv struct {
	deleteErr error
}

func (f *fakeTopicSrv) List(context.Context) ([]models.Topic, error) { return []models.Topic{}, nil }

func (f *fakeTopicSrv) Get(_ context.Context, id string) (*models.Topic, error) {
	return &models.Topic{ID: id}, nil
}

func (f *fakeTopicSrv) Create(_ context.Context, _ *models.JWTClaims, req dto.TopicRequest) (*models.Topic, error) {
	return &models.Topic{ID: "T003", Name: req.Name}, nil
}

func (f *fakeTopicSrv) Update(_ context.Context, _ *models.JWTClaims, id string, req dto.TopicRequest) (*models.Topic, error) {
	return &models.Topic{ID: id, Name: req.Name}, nil
}

func (f *fakeTopicSrv) Delete(context.Context, *models.JWTClaims, string) error {
	return f.deleteErr
}

func TestCounselorHandlerAddExpertiseStatus(t *testing.T) {
	for _, tc := range []struct {
		created bool
		status  int
	}{{true, http.StatusCreated}, {false, http.StatusOK}} {
		h := NewCounselorHandler(&fakeCounselorSrv{created: tc.created})
		c, rec := newTestContext(http.MethodPost, "/counselors/K1/topics", dto.AddExpertiseRequest{TopicID: "T1"}, adminClaims)
		c.Params = gin.Params{{Key: "id", Value: "K1"}}
		h.AddExpertise(c)

		assert.Equal(t, tc.status, rec.Code)
		var result dto.ExpertiseResult
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
		assert.Equal(t, tc.created, result.Created)
	}
}

func TestCounselorHandlerDeleteConflict(t *testing.T) {
	h := NewCounselorHandler(&fakeCounselorSrv{deleteErr: appErrors.Clone(appErrors.ErrConflict, "counselor still has counseling sessions")})
	c, rec := newTestContext(http.MethodDelete, "/counselors/K1", nil, adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "K1"}}
	h.Delete(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTopicHandlerCreate(t *testing.T) {
	h := NewTopicHandler(&fakeTopicSrv{})
	c, rec := newTestContext(http.MethodPost, "/topics", dto.TopicRequest{Name: "Keluarga"}, adminClaims)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var topic models.Topic
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &topic))
	assert.Equal(t, "T003", topic.ID)
}

func TestTopicHandlerDeleteInUse(t *testing.T) {
	h := NewTopicHandler(&fakeTopicSrv{deleteErr: appErrors.ErrTopicInUse})
	c, rec := newTestContext(http.MethodDelete, "/topics/T001", nil, adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "T001"}}
	h.Delete(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "TOPIC_IN_USE", decodeEnvelope(t, rec).Error.Code)
}
