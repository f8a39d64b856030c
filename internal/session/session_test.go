package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyaboveme/yourgency/internal/gateway"
	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/pipeline"
)

type fakeClient struct {
	mu       sync.Mutex
	token    string
	deals    []models.Deal
	saved    [][]models.Deal
	loginErr error
	loadErr  error
	saveErr  error
}

func (f *fakeClient) Login(_ context.Context, email, _ string) (*gateway.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	res := &gateway.LoginResult{User: models.User{Email: email, Role: models.RoleUser}}
	res.Tokens.AccessToken = "tok"
	f.SetToken(res.Tokens.AccessToken)
	return res, nil
}

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeClient) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeClient) LoadDeals(context.Context) ([]models.Deal, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.deals, nil
}

func (f *fakeClient) SaveDeals(_ context.Context, deals []models.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, deals)
	return f.saveErr
}

var creds = Credentials{Email: "sam@yourgency.test", Password: "pw"}

func TestStart_LoadsBoard(t *testing.T) {
	c := &fakeClient{deals: []models.Deal{{ID: "1", Stage: models.StageProspect}}}
	s, err := Start(context.Background(), c, creds, nil)
	require.NoError(t, err)

	assert.Equal(t, "sam@yourgency.test", s.User.Email)
	assert.Equal(t, "tok", c.currentToken())
	assert.Len(t, s.Board.Deals(), 1)

	assert.Equal(t, pipeline.Applied, s.Board.Advance("1"))
	require.NoError(t, s.Close(context.Background()))
	assert.Empty(t, c.currentToken())
	require.Len(t, c.saved, 1)
	assert.Equal(t, models.StageOutreach, c.saved[0][0].Stage)
}

func TestStart_Failures(t *testing.T) {
	_, err := Start(context.Background(), &fakeClient{}, Credentials{Email: "x"}, nil)
	var verr *models.ErrValidation
	assert.ErrorAs(t, err, &verr)

	denied := &models.ErrUnauthorized{Message: "Invalid email or password"}
	_, err = Start(context.Background(), &fakeClient{loginErr: denied}, creds, nil)
	assert.ErrorIs(t, err, denied)

	c := &fakeClient{loadErr: errors.New("gateway down")}
	_, err = Start(context.Background(), c, creds, nil)
	require.Error(t, err)
	assert.Empty(t, c.currentToken(), "token dropped when the board cannot load")
}

func TestClose_ReportsLastPersistFailure(t *testing.T) {
	c := &fakeClient{
		deals:   []models.Deal{{ID: "1", Stage: models.StageProspect}},
		saveErr: errors.New("503"),
	}
	s, err := Start(context.Background(), c, creds, nil)
	require.NoError(t, err)

	s.Board.Advance("1")
	err = s.Close(context.Background())
	var perr *pipeline.PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.StageOutreach, s.Board.Deals()[0].Stage, "local state kept")
}
