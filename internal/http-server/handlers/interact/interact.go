package interact

import (
	"TimerBot/bot/chat"
	"TimerBot/internal/lib/api/cont"
	"TimerBot/internal/lib/api/response"
	"TimerBot/internal/lib/sl"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	Action string `json:"action,omitempty" validate:"required_without=Value,max=32"`
	Value  string `json:"value,omitempty" validate:"required_without=Action,max=64"`
	Name   string `json:"name,omitempty" validate:"max=100"`
}

type Response struct {
	View string     `json:"view"`
	Done bool       `json:"done"`
	Step *chat.Step `json:"step,omitempty"`
}

func Interact(log *slog.Logger, handler Core) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.interact")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			logger.Error("decode request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Debug("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		in, _ := chat.ParseInput(req.UserID, req.Value)
		if req.Action != "" {
			in = chat.Interaction{
				UserID: req.UserID,
				Action: chat.Action(req.Action),
				Name:   req.Name,
			}
		}

		res, err := handler.Interact(r.Context(), in)
		if err != nil {
			logger.Error("interaction failed", sl.Err(err))
			if errors.Is(err, chat.ErrMissingUser) {
				render.Status(r, http.StatusBadRequest)
			} else {
				render.Status(r, http.StatusInternalServerError)
			}
			render.JSON(w, r, response.Error("Interaction failed"))
			return
		}

		caller := ""
		if user := cont.GetUser(r.Context()); user != nil {
			caller = user.Username
		}
		logger.With(
			slog.String("user_id", req.UserID),
			slog.String("caller", caller),
			slog.Bool("done", res.Done()),
		).Debug("interaction resolved")

		render.JSON(w, r, response.Ok(Response{
			View: res.View,
			Done: res.Done(),
			Step: res.Next,
		}))
	}
}
