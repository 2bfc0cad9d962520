package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/goliatone/go-regform/internal/server"
	"github.com/goliatone/go-regform/pkg/form"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/render"
	"github.com/goliatone/go-regform/pkg/store"
	"github.com/goliatone/go-regform/pkg/testsupport"
	"github.com/goliatone/go-regform/pkg/validation"
)

type harness struct {
	t      *testing.T
	srv    *server.Server
	store  *store.Store
	http   *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, options ...server.Option) *harness {
	t.Helper()
	st := store.New()
	st.SetCountries(testsupport.Countries())

	options = append([]server.Option{server.WithLogger(zaptest.NewLogger(t))}, options...)
	srv, err := server.New(st, options...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	return &harness{t: t, srv: srv, store: st, http: ts, client: newClient(t)}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (h *harness) do(client *http.Client, method, path, contentType string, body io.Reader, accept string) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(method, h.http.URL+path, body)
	require.NoError(h.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	res, err := client.Do(req)
	require.NoError(h.t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(h.t, err)
	return res, string(data)
}

func (h *harness) get(path string) (*http.Response, string) {
	return h.do(h.client, http.MethodGet, path, "", nil, "")
}

func (h *harness) postForm(path string, values url.Values) (*http.Response, string) {
	return h.do(h.client, http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()), "")
}

func multipartBody(t *testing.T, values url.Values, pic *model.Picture) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, list := range values {
		for _, v := range list {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	if pic != nil {
		part, err := mw.CreateFormFile(string(model.FieldPicture), pic.Filename)
		require.NoError(t, err)
		_, err = part.Write(pic.Data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), &buf
}

func TestLanding_Empty(t *testing.T) {
	h := newHarness(t)

	res, body := h.get("/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, res.Header.Get("Content-Type"), "text/html")
	require.Contains(t, body, "No form has been submitted yet.")
	require.Contains(t, body, `href="/uncontrolled-form"`)
	require.Contains(t, body, `href="/react-hook-form"`)
}

func TestSubmit_ValidRedirectsHome(t *testing.T) {
	for _, variant := range form.Variants {
		t.Run(string(variant), func(t *testing.T) {
			h := newHarness(t)

			res, _ := h.postForm(variant.Path(), testsupport.ValidForm())
			require.Equal(t, http.StatusSeeOther, res.StatusCode)
			require.Equal(t, "/", res.Header.Get("Location"))

			data, ok := store.SelectFormData(h.store.State())
			require.True(t, ok)
			require.Equal(t, testsupport.ValidValues(), data)

			_, body := h.get("/")
			require.Contains(t, body, `data-field="name">Alice</dd>`)
			require.Contains(t, body, `data-field="country">France</dd>`)
			require.NotContains(t, body, "Abcdef1!")
		})
	}
}

func TestSubmit_InvalidRerenders(t *testing.T) {
	cases := map[string]struct {
		field   model.Field
		value   string
		message string
	}{
		"lowercase name":    {field: model.FieldName, value: "alice", message: validation.MsgNameUppercase},
		"password mismatch": {field: model.FieldPasswordConfirm, value: "different", message: validation.MsgPasswordMismatch},
		"terms unchecked":   {field: model.FieldAcceptTerms, message: "Conditions is required"},
	}

	for _, variant := range form.Variants {
		for name, tc := range cases {
			t.Run(string(variant)+"/"+name, func(t *testing.T) {
				h := newHarness(t)

				values := testsupport.ValidForm()
				if tc.value == "" {
					values.Del(string(tc.field))
				} else {
					values.Set(string(tc.field), tc.value)
				}

				res, body := h.postForm(variant.Path(), values)
				require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
				require.Contains(t, body, tc.message)
				require.Contains(t, body, `<div class="field invalid" data-field="`+string(tc.field)+`">`)
				require.Contains(t, body, "disabled>Submit</button>")

				_, ok := store.SelectFormData(h.store.State())
				require.False(t, ok)
			})
		}
	}
}

func TestSubmit_StripsMarkup(t *testing.T) {
	h := newHarness(t)

	values := testsupport.ValidForm()
	values.Set(string(model.FieldName), "<b>Alice</b>")

	res, _ := h.postForm(form.VariantManual.Path(), values)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	data, ok := store.SelectFormData(h.store.State())
	require.True(t, ok)
	require.Equal(t, "Alice", data.Name)
}

func TestSubmit_MultipartWithPicture(t *testing.T) {
	h := newHarness(t)

	contentType, body := multipartBody(t, testsupport.ValidForm(), testsupport.PNGPicture("me.png"))
	res, _ := h.do(h.client, http.MethodPost, form.VariantDelegated.Path(), contentType, body, "")
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	h.srv.Images().Wait()

	image, ok := store.SelectFormImage(h.store.State())
	require.True(t, ok)
	require.True(t, strings.HasPrefix(image, "data:image/png;base64,"))

	_, landing := h.get("/")
	require.Contains(t, landing, `<img src="data:image/png;base64,`)
	require.Contains(t, landing, `data-field="picture">me.png</dd>`)
}

func TestSubmit_RefusedLeavesStoreUntouched(t *testing.T) {
	for _, variant := range form.Variants {
		t.Run(string(variant), func(t *testing.T) {
			h := newHarness(t)

			values := testsupport.ValidForm()
			values.Set(string(model.FieldName), "alice")
			contentType, body := multipartBody(t, values, testsupport.PNGPicture("me.png"))
			res, page := h.do(h.client, http.MethodPost, variant.Path(), contentType, body, "")
			require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
			require.Contains(t, page, validation.MsgNameUppercase)
			h.srv.Images().Wait()

			require.Nil(t, h.store.State().FormData)
			require.Nil(t, h.store.State().FormImage)
		})
	}
}

func TestField_LiveValidation(t *testing.T) {
	for _, variant := range form.Variants {
		t.Run(string(variant), func(t *testing.T) {
			h := newHarness(t)
			path := variant.Path() + "/fields/name"

			res, body := h.postForm(path, url.Values{"value": {"alice"}})
			require.Equal(t, http.StatusOK, res.StatusCode)
			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			require.Equal(t, map[string]any{
				"field":          "name",
				"value":          "alice",
				"error":          validation.MsgNameUppercase,
				"submitDisabled": true,
			}, got)

			_, body = h.postForm(path, url.Values{"value": {"Alice"}})
			got = nil
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			require.Equal(t, "", got["error"])
			require.Equal(t, false, got["submitDisabled"])

			_, page := h.get(variant.Path())
			require.Contains(t, page, `value="Alice"`)
		})
	}
}

func TestField_MasksPasswords(t *testing.T) {
	h := newHarness(t)

	_, body := h.postForm(form.VariantManual.Path()+"/fields/password", url.Values{"value": {"Abcdef1!"}})
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Equal(t, "********", got["value"])
}

func TestField_UnknownTargets(t *testing.T) {
	h := newHarness(t)

	res, _ := h.postForm(form.VariantManual.Path()+"/fields/nickname", url.Values{"value": {"x"}})
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = h.postForm(form.VariantManual.Path()+"/fields/picture", url.Values{"value": {"x"}})
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = h.postForm("/no-such-form/fields/name", url.Values{"value": {"x"}})
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = h.get("/no-such-form")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPicture_LoadsIntoStore(t *testing.T) {
	h := newHarness(t)

	contentType, body := multipartBody(t, nil, testsupport.PNGPicture("me.png"))
	res, payload := h.do(h.client, http.MethodPost, form.VariantManual.Path()+"/picture", contentType, body, "")
	require.Equal(t, http.StatusAccepted, res.StatusCode)

	var got struct {
		Token    uint64 `json:"token"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &got))
	require.Equal(t, uint64(1), got.Token)
	require.Equal(t, "me.png", got.Filename)

	h.srv.Images().Wait()
	image, ok := store.SelectFormImage(h.store.State())
	require.True(t, ok)
	require.True(t, strings.HasPrefix(image, "data:image/png;base64,"))
}

func TestPicture_TokensSharedAcrossSessions(t *testing.T) {
	h := newHarness(t)

	tokens := make([]uint64, 0, 2)
	for _, client := range []*http.Client{h.client, newClient(t)} {
		contentType, body := multipartBody(t, nil, testsupport.PNGPicture("me.png"))
		res, payload := h.do(client, http.MethodPost, form.VariantDelegated.Path()+"/picture", contentType, body, "")
		require.Equal(t, http.StatusAccepted, res.StatusCode)

		var got struct {
			Token uint64 `json:"token"`
		}
		require.NoError(t, json.Unmarshal([]byte(payload), &got))
		tokens = append(tokens, got.Token)
	}
	require.Equal(t, []uint64{1, 2}, tokens)
	require.Equal(t, store.Token(2), h.srv.Images().Latest())
	require.Equal(t, 2, h.srv.Sessions().Len())
	h.srv.Images().Wait()
}

func TestPicture_Rejections(t *testing.T) {
	h := newHarness(t, server.WithUploadLimit(8))

	contentType, body := multipartBody(t, nil, testsupport.PNGPicture("big.png"))
	res, _ := h.do(h.client, http.MethodPost, form.VariantManual.Path()+"/picture", contentType, body, "")
	require.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)

	contentType, body = multipartBody(t, url.Values{"other": {"x"}}, nil)
	res, _ = h.do(h.client, http.MethodPost, form.VariantManual.Path()+"/picture", contentType, body, "")
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	_, ok := store.SelectFormImage(h.store.State())
	require.False(t, ok)
}

func TestSessions_Isolated(t *testing.T) {
	h := newHarness(t)
	other := newClient(t)

	_, _ = h.postForm(form.VariantManual.Path()+"/fields/name", url.Values{"value": {"alice"}})

	_, mine := h.get(form.VariantManual.Path())
	require.Contains(t, mine, validation.MsgNameUppercase)

	_, theirs := h.do(other, http.MethodGet, form.VariantManual.Path(), "", nil, "")
	require.NotContains(t, theirs, validation.MsgNameUppercase)

	require.Equal(t, 2, h.srv.Sessions().Len())
}

func TestForm_NegotiatesJSON(t *testing.T) {
	h := newHarness(t)

	res, body := h.do(h.client, http.MethodGet, form.VariantDelegated.Path(), "", nil, "application/json")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, res.Header.Get("Content-Type"), "application/json")

	var page render.Page
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Equal(t, render.PageForm, page.Kind)
	require.NotNil(t, page.Form)
	require.Equal(t, string(form.VariantDelegated), page.Form.Variant)
}

func TestForm_ThemeVariant(t *testing.T) {
	h := newHarness(t, server.WithThemeVariant("dark"))

	_, body := h.get(form.VariantManual.Path())
	require.Contains(t, body, `data-theme-variant="dark"`)

	_, body = h.get(form.VariantManual.Path() + "?theme=light")
	require.Contains(t, body, `data-theme-variant=""`)
}

func TestCountries_FromStore(t *testing.T) {
	h := newHarness(t)

	res, body := h.get("/api/countries?q=fra")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `{"data":[{"id":"fr","name":"France"}]}`, body)
}

func TestHealthAndAssets(t *testing.T) {
	h := newHarness(t)

	res, body := h.get("/healthz")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, body)

	res, body = h.get("/assets/regform.css")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, "--brand")
}

func TestOpenAPI_Document(t *testing.T) {
	require.NoError(t, server.OpenAPI().Validate(context.Background()))

	h := newHarness(t)
	res, body := h.get("/api/openapi.json")
	require.Equal(t, http.StatusOK, res.StatusCode)

	doc, err := openapi3.NewLoader().LoadFromData([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, doc.Paths.Find("/api/countries"))
	require.NotNil(t, doc.Paths.Find("/{form}/fields/{field}"))
}

func TestCORS_Preflight(t *testing.T) {
	h := newHarness(t, server.WithAllowedOrigins("https://app.test"))

	req, err := http.NewRequest(http.MethodOptions, h.http.URL+"/api/countries", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	res, err := h.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, "https://app.test", res.Header.Get("Access-Control-Allow-Origin"))
}
