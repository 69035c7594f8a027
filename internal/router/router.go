package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mira/internal/logging"
	"mira/internal/reminders"
)

// Speaker voices a response to the user.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Conversation is the free-form fallback for commands no branch claims.
type Conversation interface {
	Reply(ctx context.Context, text string) (string, error)
	Reset()
}

type weatherSource interface {
	Current(ctx context.Context) (string, error)
}

type newsSource interface {
	Headlines(ctx context.Context) (string, error)
}

type deviceHandler interface {
	Handle(text string) (string, bool)
}

type reminderScheduler interface {
	Schedule(ctx context.Context, raw string) (reminders.Reminder, error)
}

type reminderLister interface {
	Upcoming(ctx context.Context, now time.Time, limit int) ([]reminders.Reminder, error)
}

// Router maps one finalized utterance to one action. Branches are tried in
// a fixed order and the first claim wins. Any component may be nil; its
// branch then answers that the feature is not set up instead of crashing.
type Router struct {
	weather      weatherSource
	news         newsSource
	devices      deviceHandler
	scheduler    reminderScheduler
	lister       reminderLister
	conversation Conversation
	logger       logging.Logger
}

type Option func(*Router)

func WithWeather(w weatherSource) Option { return func(r *Router) { r.weather = w } }
func WithNews(n newsSource) Option       { return func(r *Router) { r.news = n } }
func WithDevices(d deviceHandler) Option { return func(r *Router) { r.devices = d } }

func WithReminders(s reminderScheduler, l reminderLister) Option {
	return func(r *Router) { r.scheduler = s; r.lister = l }
}

func WithConversation(c Conversation) Option { return func(r *Router) { r.conversation = c } }

func New(logger logging.Logger, opts ...Option) *Router {
	r := &Router{logger: logging.OrNop(logger)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Outcome is what one routed command produced.
type Outcome struct {
	// Reply is the text to speak back.
	Reply string
	// Kind names the branch that claimed the command.
	Kind string
	// Shutdown means the user asked the assistant to stop.
	Shutdown bool
}

// Route interprets one utterance. It never returns an error: failures
// inside a branch become spoken failure replies.
func (r *Router) Route(ctx context.Context, raw string) Outcome {
	text := Sanitize(raw)
	if text == "" {
		return Outcome{Reply: "Я вас не расслышала", Kind: "empty"}
	}
	lowered := strings.ToLower(text)

	switch {
	case strings.Contains(lowered, "погод"),
		strings.Contains(lowered, "температур"),
		strings.Contains(lowered, "градус"):
		return Outcome{Reply: r.currentWeather(ctx), Kind: "weather"}

	case strings.Contains(lowered, "новост"):
		return Outcome{Reply: r.headlines(ctx), Kind: "news"}
	}

	if r.devices != nil {
		if reply, handled := r.devices.Handle(text); handled {
			return Outcome{Reply: reply, Kind: "smart_home"}
		}
	}

	switch {
	case strings.Contains(lowered, "мои напоминания"),
		strings.Contains(lowered, "какие напоминания"),
		strings.Contains(lowered, "что запланировано"):
		return Outcome{Reply: r.upcoming(ctx), Kind: "reminders_list"}

	case strings.Contains(lowered, "напомни"):
		return Outcome{Reply: r.schedule(ctx, text), Kind: "reminder"}

	case strings.Contains(lowered, "забудь"),
		strings.Contains(lowered, "сбрось"),
		strings.Contains(lowered, "новый разговор"):
		if r.conversation != nil {
			r.conversation.Reset()
		}
		return Outcome{Reply: "Хорошо, начинаем с чистого листа", Kind: "reset"}

	case strings.Contains(lowered, "выключись"),
		strings.Contains(lowered, "заверши работу"),
		strings.Contains(lowered, "стоп программа"):
		return Outcome{Reply: "Выключаюсь. До встречи", Kind: "shutdown", Shutdown: true}
	}

	return Outcome{Reply: r.smallTalk(ctx, text), Kind: "conversation"}
}

func (r *Router) currentWeather(ctx context.Context) string {
	if r.weather == nil {
		return "Прогноз погоды не настроен"
	}
	reply, err := r.weather.Current(ctx)
	if err != nil {
		r.logger.Error("weather lookup: %v", err)
		return "Не получилось узнать погоду"
	}
	return reply
}

func (r *Router) headlines(ctx context.Context) string {
	if r.news == nil {
		return "Новости не настроены"
	}
	reply, err := r.news.Headlines(ctx)
	if err != nil {
		r.logger.Error("news lookup: %v", err)
		return "Не получилось узнать новости"
	}
	return reply
}

func (r *Router) schedule(ctx context.Context, text string) string {
	if r.scheduler == nil {
		return "Напоминания не настроены"
	}
	rem, err := r.scheduler.Schedule(ctx, text)
	if errors.Is(err, reminders.ErrNoTimeExpression) {
		return "Не поняла, на какое время поставить напоминание"
	}
	if err != nil {
		r.logger.Error("schedule reminder: %v", err)
		return "Не получилось сохранить напоминание"
	}
	return fmt.Sprintf("Хорошо, напомню %s в %s", rem.Text, rem.DueAt.Format("15:04 02.01"))
}

func (r *Router) upcoming(ctx context.Context) string {
	if r.lister == nil {
		return "Напоминания не настроены"
	}
	list, err := r.lister.Upcoming(ctx, time.Now(), 5)
	if err != nil {
		r.logger.Error("list reminders: %v", err)
		return "Не получилось прочитать напоминания"
	}
	if len(list) == 0 {
		return "Запланированных напоминаний нет"
	}
	parts := make([]string, 0, len(list))
	for _, rem := range list {
		parts = append(parts, fmt.Sprintf("%s в %s", rem.Text, rem.DueAt.Format("15:04 02.01")))
	}
	return "Запланировано: " + strings.Join(parts, "; ")
}

func (r *Router) smallTalk(ctx context.Context, text string) string {
	if r.conversation == nil {
		return "Я пока не умею отвечать на это"
	}
	reply, err := r.conversation.Reply(ctx, text)
	if err != nil {
		r.logger.Error("conversation reply: %v", err)
		return "Что-то пошло не так, попробуйте ещё раз"
	}
	return reply
}
