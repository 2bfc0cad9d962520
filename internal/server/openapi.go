package server

import (
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-regform/pkg/form"
	"github.com/goliatone/go-regform/pkg/model"
)

var (
	openAPIOnce sync.Once
	openAPIDoc  *openapi3.T
)

// OpenAPI describes the JSON endpoints served next to the HTML forms.
func OpenAPI() *openapi3.T {
	openAPIOnce.Do(func() {
		openAPIDoc = buildOpenAPI()
	})
	return openAPIDoc
}

func buildOpenAPI() *openapi3.T {
	variants := make([]any, 0, len(form.Variants))
	for _, v := range form.Variants {
		variants = append(variants, string(v))
	}
	fields := make([]any, 0, len(model.Fields))
	for _, f := range model.Fields {
		fields = append(fields, string(f))
	}

	formParam := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("form").
		WithDescription("Form variant").
		WithSchema(openapi3.NewStringSchema().WithEnum(variants...))}
	fieldParam := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("field").
		WithSchema(openapi3.NewStringSchema().WithEnum(fields...))}

	errorSchema := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
	errorResponse := &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Request rejected").
		WithJSONSchema(errorSchema)}

	country := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("name", openapi3.NewStringSchema())
	countriesOp := &openapi3.Operation{
		OperationID: "listCountries",
		Summary:     "Search the country list",
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewQueryParameter("q").WithSchema(openapi3.NewStringSchema())},
			{Value: openapi3.NewQueryParameter("limit").WithSchema(openapi3.NewIntegerSchema())},
			{Value: openapi3.NewQueryParameter("format").WithSchema(openapi3.NewStringSchema().WithEnum("options"))},
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().
				WithDescription("Matching countries").
				WithJSONSchema(openapi3.NewObjectSchema().WithProperty("data", openapi3.NewArraySchema().WithItems(country)))}),
		),
	}

	fieldOp := &openapi3.Operation{
		OperationID: "changeField",
		Summary:     "Apply a live change to one field",
		Parameters:  openapi3.Parameters{formParam, fieldParam},
		RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithSchema(openapi3.NewObjectSchema().WithProperty("value", openapi3.NewStringSchema()),
				[]string{"application/x-www-form-urlencoded"})},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().
				WithDescription("Field state after the change").
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("field", openapi3.NewStringSchema()).
					WithProperty("value", openapi3.NewStringSchema()).
					WithProperty("error", openapi3.NewStringSchema()).
					WithProperty("submitDisabled", openapi3.NewBoolSchema()))}),
			openapi3.WithStatus(http.StatusNotFound, errorResponse),
		),
	}

	pictureOp := &openapi3.Operation{
		OperationID: "selectPicture",
		Summary:     "Select a picture and load it in the background",
		Parameters:  openapi3.Parameters{formParam},
		RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithSchema(openapi3.NewObjectSchema().WithProperty("picture",
				openapi3.NewStringSchema().WithFormat("binary")),
				[]string{"multipart/form-data"})},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusAccepted, &openapi3.ResponseRef{Value: openapi3.NewResponse().
				WithDescription("Load started").
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("token", openapi3.NewIntegerSchema()).
					WithProperty("filename", openapi3.NewStringSchema()))}),
			openapi3.WithStatus(http.StatusBadRequest, errorResponse),
			openapi3.WithStatus(http.StatusRequestEntityTooLarge, errorResponse),
		),
	}

	healthOp := &openapi3.Operation{
		OperationID: "health",
		Summary:     "Liveness probe",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().
				WithDescription("Service is up").
				WithJSONSchema(openapi3.NewObjectSchema().WithProperty("status", openapi3.NewStringSchema()))}),
		),
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Registration forms",
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/api/countries", &openapi3.PathItem{Get: countriesOp}),
			openapi3.WithPath("/{form}/fields/{field}", &openapi3.PathItem{Post: fieldOp}),
			openapi3.WithPath("/{form}/picture", &openapi3.PathItem{Post: pictureOp}),
			openapi3.WithPath("/healthz", &openapi3.PathItem{Get: healthOp}),
		),
	}
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	body, err := OpenAPI().MarshalJSON()
	if err != nil {
		s.logger.Error("marshal openapi", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}
