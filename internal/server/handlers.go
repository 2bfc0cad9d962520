package server

import (
	"context"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-regform/pkg/form"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/picture"
	"github.com/goliatone/go-regform/pkg/render"
	"github.com/goliatone/go-regform/pkg/store"
	"github.com/goliatone/go-regform/pkg/validation"
)

// formOverhead is the multipart allowance on top of the picture limit for
// the text fields and part headers.
const formOverhead = int64(1 << 20)

// fieldResponse answers a live field change.
type fieldResponse struct {
	Field          string `json:"field"`
	Value          string `json:"value"`
	Error          string `json:"error"`
	SubmitDisabled bool   `json:"submitDisabled"`
}

// pictureResponse answers a picture selection.
type pictureResponse struct {
	Token    uint64 `json:"token"`
	Filename string `json:"filename"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, render.NewLandingPage(s.store.State()), render.RenderOptions{})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	sess, ctrl, err := s.controller(w, r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.renderForm(w, r, http.StatusOK, ctrl, nil)
}

// handleSubmit applies every posted field through the controller, attaches
// the uploaded picture, and submits.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ctrl, err := s.controller(w, r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.parseForm(w, r); err != nil {
		s.renderForm(w, r, statusFor(err), ctrl, []string{err.Error()})
		return
	}

	ctx := r.Context()
	for _, field := range model.Fields {
		if _, err := ctrl.Change(ctx, field, s.formValue(r, string(field), field)); err != nil {
			s.logger.Error("apply field", zap.String("field", string(field)), zap.Error(err))
			s.renderForm(w, r, statusFor(err), ctrl, []string{err.Error()})
			return
		}
	}

	pic, err := s.uploadedPicture(r)
	if err != nil {
		s.renderForm(w, r, http.StatusUnprocessableEntity, ctrl, []string{err.Error()})
		return
	}
	if pic != nil {
		if err := ctrl.AttachPicture(ctx, pic); err != nil {
			s.renderForm(w, r, statusFor(err), ctrl, []string{err.Error()})
			return
		}
	}

	outcome, err := ctrl.Submit(ctx)
	if err != nil {
		s.logger.Error("submit", zap.String("form", string(ctrl.Variant())), zap.Error(err))
		s.renderForm(w, r, statusFor(err), ctrl, nil)
		return
	}
	if !outcome.OK {
		s.renderForm(w, r, http.StatusUnprocessableEntity, ctrl, nil)
		return
	}
	if outcome.ImageErr != nil {
		s.logger.Warn("submitted picture not displayable", zap.Error(outcome.ImageErr))
	}
	s.logger.Info("form submitted", zap.String("form", string(ctrl.Variant())))
	http.Redirect(w, r, outcome.Redirect, http.StatusSeeOther)
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	sess, ctrl, err := s.controller(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	field, ok := model.ParseField(chi.URLParam(r, "field"))
	if !ok || field == model.FieldPicture {
		writeError(w, fmt.Errorf("%w: %s", validation.ErrUnknownField, chi.URLParam(r, "field")))
		return
	}
	if err := s.parseForm(w, r); err != nil {
		writeError(w, err)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if _, err := ctrl.Change(r.Context(), field, s.formValue(r, "value", field)); err != nil {
		writeError(w, err)
		return
	}
	view := ctrl.View()
	value := view.Values.String(field)
	if (field == model.FieldPassword || field == model.FieldPasswordConfirm) && value != "" {
		value = "********"
	}
	writeJSON(w, http.StatusOK, fieldResponse{
		Field:          string(field),
		Value:          value,
		Error:          view.Error(field),
		SubmitDisabled: view.SubmitDisabled,
	})
}

func (s *Server) handlePicture(w http.ResponseWriter, r *http.Request) {
	sess, ctrl, err := s.controller(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.parseForm(w, r); err != nil {
		writeError(w, err)
		return
	}
	pic, err := s.uploadedPicture(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if pic == nil {
		writeError(w, ErrMissingPicture)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	token, err := ctrl.SelectPicture(context.WithoutCancel(r.Context()), pic)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, pictureResponse{Token: uint64(token), Filename: pic.Filename})
}

// controller resolves the session and the controller named by the route.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) (*Session, form.Controller, error) {
	variant, ok := form.ParseVariant(chi.URLParam(r, "form"))
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownForm, chi.URLParam(r, "form"))
	}
	sess := s.sessions.Resolve(w, r)
	ctrl, ok := sess.Controller(variant)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownForm, variant)
	}
	return sess, ctrl, nil
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadLimit+formOverhead)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(s.uploadLimit + formOverhead)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}
	if statusFor(err) == http.StatusRequestEntityTooLarge {
		return err
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// formValue reads the posted value of key for field. Markup is stripped
// from free-text inputs; an absent checkbox reads as unchecked.
func (s *Server) formValue(r *http.Request, key string, field model.Field) any {
	values, present := r.PostForm[key]
	if field == model.FieldAcceptTerms {
		if !present {
			return false
		}
		return values
	}
	raw := ""
	if present && len(values) > 0 {
		raw = values[0]
	}
	switch field {
	case model.FieldName, model.FieldEmail:
		return s.sanitize(raw)
	}
	return raw
}

func (s *Server) sanitize(raw string) string {
	if !strings.ContainsAny(raw, "<>&") {
		return raw
	}
	return html.UnescapeString(s.sanitizer.Sanitize(raw))
}

// uploadedPicture returns the picture part of a multipart body, or nil when
// the request carries none or an empty file input.
func (s *Server) uploadedPicture(r *http.Request) (*model.Picture, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[string(model.FieldPicture)]
	var header *multipart.FileHeader
	for _, candidate := range headers {
		if candidate != nil && candidate.Filename != "" && candidate.Size > 0 {
			header = candidate
			break
		}
	}
	if header == nil {
		return nil, nil
	}
	return picture.FromMultipart(header, s.uploadLimit)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, ctrl form.Controller, formErrors []string) {
	page := render.NewFormPage(ctrl.View(), store.SelectCountries(s.store.State()))
	s.render(w, r, status, page, render.RenderOptions{FormErrors: formErrors})
}

// render negotiates a renderer from Accept and writes page. The theme
// query parameter overrides the configured theme variant.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page render.Page, options render.RenderOptions) {
	renderer, err := s.renderers.Negotiate(r.Header.Get("Accept"))
	if err != nil {
		s.logger.Error("negotiate renderer", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	options.Theme = s.themeVariant
	if variant := r.URL.Query().Get("theme"); variant != "" {
		options.Theme = variant
	}

	body, err := renderer.Render(r.Context(), page, options)
	if err != nil {
		s.logger.Error("render page", zap.String("kind", string(page.Kind)), zap.String("renderer", renderer.Name()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Add("Vary", "Accept")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
