package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/99designs/gqlgen/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/civic-registry/internal/adapter/memory/record"
	"github.com/heartmarshall/civic-registry/internal/domain"
	"github.com/heartmarshall/civic-registry/internal/notify"
	"github.com/heartmarshall/civic-registry/internal/service/query"
)

type fixture struct {
	handler  http.Handler
	repo     *record.Repo
	notifier *notify.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := slog.Default()
	repo := record.New()
	n := notify.New(log, 8, nil)
	t.Cleanup(n.Close)

	schema := NewExecutableSchema(query.NewResolver(log, repo, nil), n, log)
	return &fixture{
		handler:  NewHandler(schema, Options{ComplexityLimit: 100}, log),
		repo:     repo,
		notifier: n,
	}
}

func (f *fixture) seed(t *testing.T, typ, name string) domain.ServiceRecord {
	t.Helper()
	rec, err := f.repo.Create(context.Background(), domain.Attributes{Type: typ, Name: name, Address: name + " St"})
	require.NoError(t, err)
	return rec
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func post(t *testing.T, h http.Handler, q string, vars map[string]any) (int, gqlResponse) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"query": q, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return rec.Code, resp
}

func TestQuery_ServicesProjection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.seed(t, "library", "Central Library")
	b := f.seed(t, "park", "Riverside")

	code, resp := post(t, f.handler, `{ services { id name } }`, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, resp.Errors)

	want := `{"services":[{"id":"` + a.ID + `","name":"Central Library"},{"id":"` + b.ID + `","name":"Riverside"}]}`
	assert.JSONEq(t, want, string(resp.Data))
	// selection order is kept and nothing else leaks
	assert.Equal(t, want, string(resp.Data))
}

func TestQuery_TypeFilterAliasesAndTypename(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, "library", "Central Library")
	park := f.seed(t, "park", "Riverside")

	c := client.New(f.handler)
	var resp struct {
		Typename string `json:"__typename"`
		Parks    []struct {
			Typename string `json:"__typename"`
			Key      string `json:"key"`
			Name     string `json:"name"`
		} `json:"parks"`
	}
	c.MustPost(`query { __typename parks: services(type: "park") { __typename key: id name } }`, &resp)

	assert.Equal(t, "Query", resp.Typename)
	require.Len(t, resp.Parks, 1)
	assert.Equal(t, "Service", resp.Parks[0].Typename)
	assert.Equal(t, park.ID, resp.Parks[0].Key)
	assert.Equal(t, "Riverside", resp.Parks[0].Name)
}

func TestQuery_ServiceByID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.seed(t, "clinic", "Eastside Clinic")

	code, resp := post(t, f.handler, `query($id: ID!) { service(id: $id) { name updatedAt } missing: service(id: "nope") { id } }`,
		map[string]any{"id": rec.ID})
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, resp.Errors)

	var data struct {
		Service *struct {
			Name      string `json:"name"`
			UpdatedAt string `json:"updatedAt"`
		} `json:"service"`
		Missing *struct{} `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotNil(t, data.Service)
	assert.Equal(t, "Eastside Clinic", data.Service.Name)
	ts, err := time.Parse(time.RFC3339Nano, data.Service.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, ts.Equal(rec.UpdatedAt))
	assert.Nil(t, data.Missing)
}

func TestQuery_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, "library", "Central Library")

	code, resp := post(t, f.handler, `{ services { id revision } }`, nil)
	assert.GreaterOrEqual(t, code, 400)
	assert.Less(t, code, 500)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, "revision")
}

func TestQuery_EmptyTypeFilterListsEverything(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, "library", "Central Library")
	f.seed(t, "park", "Riverside")

	want := `{"services":[{"name":"Central Library"},{"name":"Riverside"}]}`

	_, literal := post(t, f.handler, `{ services(type: "") { name } }`, nil)
	require.Empty(t, literal.Errors)
	assert.JSONEq(t, want, string(literal.Data))

	_, blank := post(t, f.handler, `{ services(type: " ") { name } }`, nil)
	require.Empty(t, blank.Errors)
	assert.JSONEq(t, want, string(blank.Data))

	_, variable := post(t, f.handler, `query($t: String) { services(type: $t) { name } }`, map[string]any{"t": ""})
	require.Empty(t, variable.Errors)
	assert.JSONEq(t, want, string(variable.Data))
}

func TestQuery_EmptyIDIsQueryError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, resp := post(t, f.handler, `{ service(id: "") { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeQuery, resp.Errors[0].Extensions["code"])
	assert.Equal(t, string(domain.SelectByID), resp.Errors[0].Extensions["selector"])
	assert.JSONEq(t, `null`, string(resp.Data))
}

func TestQuery_IntrospectionUnsupported(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, resp := post(t, f.handler, `{ __schema { queryType { name } } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeIntrospection, resp.Errors[0].Extensions["code"])
}

func TestSubscription_ServiceCreated(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := client.New(f.handler)

	sub := c.Websocket(`subscription { serviceCreated { id name } }`)
	defer sub.Close()

	deadline := time.Now().Add(2 * time.Second)
	for f.notifier.Len() == 0 {
		require.True(t, time.Now().Before(deadline), "subscription never registered")
		time.Sleep(5 * time.Millisecond)
	}

	first := f.seed(t, "library", "Central Library")
	second := f.seed(t, "park", "Riverside")
	f.notifier.Publish(first)
	f.notifier.Publish(second)

	for _, want := range []domain.ServiceRecord{first, second} {
		var resp struct {
			ServiceCreated struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"serviceCreated"`
		}
		require.NoError(t, sub.Next(&resp))
		assert.Equal(t, want.ID, resp.ServiceCreated.ID)
		assert.Equal(t, want.Name, resp.ServiceCreated.Name)
	}
}
