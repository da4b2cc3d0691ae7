package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotoemploi/loto-backend/internal/model"
)

// fakeRegistry returns the same user for the same identity key, like
// the real find-or-create repository.
type fakeRegistry struct {
	nextID uint64
	byKey  map[string]model.User
}

func (f *fakeRegistry) FindOrCreate(ctx context.Context, name, surname, phone, nationalID, email string) (model.User, error) {
	if f.byKey == nil {
		f.byKey = map[string]model.User{}
	}
	key := model.IdentityKey(name, surname, phone, nationalID)
	if u, ok := f.byKey[key]; ok {
		return u, nil
	}
	f.nextID++
	u := model.User{ID: f.nextID, Name: name, Surname: surname, Phone: phone, NationalID: nationalID, Email: email, UniqueKey: key}
	f.byKey[key] = u
	return u, nil
}

func postRegister(t *testing.T, h *UserHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/register-user", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(e.NewContext(req, rec)))
	return rec
}

func TestRegisterCreatesUser(t *testing.T) {
	h := NewUserHandler(&fakeRegistry{})
	rec := postRegister(t, h, `{"name":"Awa","surname":"Ndiaye","phone":"771234567","cni":"SN1","email":"awa@example.sn"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp userResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.ID)
	assert.Equal(t, "Awa", resp.Name)
	assert.Equal(t, "awa@example.sn", resp.Email)
}

// Registering the same identity twice returns the same id both times.
func TestRegisterIsIdempotentOnIdentity(t *testing.T) {
	h := NewUserHandler(&fakeRegistry{})

	first := postRegister(t, h, `{"name":"Awa","surname":"Ndiaye","phone":"771234567","cni":"SN1"}`)
	second := postRegister(t, h, `{"name":" AWA ","surname":"ndiaye","phone":"77 123 45 67","cni":"sn1","email":"later@example.sn"}`)

	var u1, u2 userResp
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &u1))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &u2))
	assert.Equal(t, u1.ID, u2.ID)
}

func TestRegisterValidatesRequiredFields(t *testing.T) {
	h := NewUserHandler(&fakeRegistry{})
	for _, body := range []string{
		`{"surname":"Ndiaye","phone":"771234567","cni":"SN1"}`,
		`{"name":"Awa","phone":"771234567","cni":"SN1"}`,
		`{"name":"Awa","surname":"Ndiaye","cni":"SN1"}`,
		`{"name":"Awa","surname":"Ndiaye","phone":"771234567"}`,
		`{"name":"  ","surname":"Ndiaye","phone":"771234567","cni":"SN1"}`,
	} {
		rec := postRegister(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}
