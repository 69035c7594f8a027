package router

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mira/internal/reminders"
)

type stubWeather struct {
	reply string
	err   error
}

func (s *stubWeather) Current(context.Context) (string, error) { return s.reply, s.err }

type stubNews struct {
	reply string
	err   error
}

func (s *stubNews) Headlines(context.Context) (string, error) { return s.reply, s.err }

type stubDevices struct {
	reply   string
	handled bool
	seen    []string
}

func (s *stubDevices) Handle(text string) (string, bool) {
	s.seen = append(s.seen, text)
	return s.reply, s.handled
}

type stubScheduler struct {
	rem reminders.Reminder
	err error
	raw string
}

func (s *stubScheduler) Schedule(_ context.Context, raw string) (reminders.Reminder, error) {
	s.raw = raw
	return s.rem, s.err
}

type stubLister struct {
	list []reminders.Reminder
	err  error
}

func (s *stubLister) Upcoming(context.Context, time.Time, int) ([]reminders.Reminder, error) {
	return s.list, s.err
}

type stubConversation struct {
	reply  string
	err    error
	resets int
}

func (s *stubConversation) Reply(_ context.Context, text string) (string, error) {
	return s.reply, s.err
}

func (s *stubConversation) Reset() { s.resets++ }

func TestRouteWeather(t *testing.T) {
	r := New(nil, WithWeather(&stubWeather{reply: "солнечно"}))
	out := r.Route(context.Background(), "какая сегодня погода")
	assert.Equal(t, "weather", out.Kind)
	assert.Equal(t, "солнечно", out.Reply)
}

func TestRouteWeatherSynonyms(t *testing.T) {
	for _, cmd := range []string{"какая температура на улице", "сколько градусов сейчас"} {
		r := New(nil, WithWeather(&stubWeather{reply: "плюс пять"}))
		out := r.Route(context.Background(), cmd)
		assert.Equal(t, "weather", out.Kind, "command %q", cmd)
	}
}

func TestRouteWeatherFailureSpoken(t *testing.T) {
	r := New(nil, WithWeather(&stubWeather{err: errors.New("api down")}))
	out := r.Route(context.Background(), "погода")
	assert.Equal(t, "weather", out.Kind)
	assert.Contains(t, out.Reply, "Не получилось")
}

func TestRouteNews(t *testing.T) {
	r := New(nil, WithNews(&stubNews{reply: "Главные новости: ..."}))
	out := r.Route(context.Background(), "расскажи новости")
	assert.Equal(t, "news", out.Kind)
}

func TestRouteSmartHome(t *testing.T) {
	devices := &stubDevices{reply: "Включаю свет", handled: true}
	r := New(nil, WithDevices(devices))
	out := r.Route(context.Background(), "включи свет")
	assert.Equal(t, "smart_home", out.Kind)
	assert.Equal(t, "Включаю свет", out.Reply)
}

func TestRouteReminderConfirmation(t *testing.T) {
	sched := &stubScheduler{rem: reminders.Reminder{
		Text:  "купить молоко",
		DueAt: time.Date(2026, 8, 30, 12, 10, 0, 0, time.Local),
	}}
	r := New(nil, WithReminders(sched, &stubLister{}))
	out := r.Route(context.Background(), "напомни через 10 минут купить молоко")
	assert.Equal(t, "reminder", out.Kind)
	assert.Contains(t, out.Reply, "купить молоко")
	assert.Contains(t, out.Reply, "12:10")
	assert.Equal(t, "напомни через 10 минут купить молоко", sched.raw)
}

func TestRouteReminderParseFailureIsUserFacing(t *testing.T) {
	sched := &stubScheduler{err: reminders.ErrNoTimeExpression}
	r := New(nil, WithReminders(sched, &stubLister{}))
	out := r.Route(context.Background(), "напомни что-то")
	assert.Contains(t, out.Reply, "на какое время")
}

func TestRouteUpcomingList(t *testing.T) {
	lister := &stubLister{list: []reminders.Reminder{
		{Text: "зарядка", DueAt: time.Date(2026, 8, 31, 8, 0, 0, 0, time.Local)},
	}}
	r := New(nil, WithReminders(&stubScheduler{}, lister))
	out := r.Route(context.Background(), "мои напоминания")
	assert.Equal(t, "reminders_list", out.Kind)
	assert.Contains(t, out.Reply, "зарядка")
}

func TestRouteResetConversation(t *testing.T) {
	conv := &stubConversation{}
	r := New(nil, WithConversation(conv))
	out := r.Route(context.Background(), "забудь всё")
	assert.Equal(t, "reset", out.Kind)
	assert.Equal(t, 1, conv.resets)
}

func TestRouteResetSynonyms(t *testing.T) {
	for _, cmd := range []string{"сбрось контекст", "начни новый разговор"} {
		conv := &stubConversation{}
		r := New(nil, WithConversation(conv))
		out := r.Route(context.Background(), cmd)
		assert.Equal(t, "reset", out.Kind, "command %q", cmd)
		assert.Equal(t, 1, conv.resets, "command %q", cmd)
	}
}

func TestRouteShutdown(t *testing.T) {
	for _, cmd := range []string{"выключись", "стоп программа"} {
		r := New(nil)
		out := r.Route(context.Background(), cmd)
		assert.True(t, out.Shutdown, "command %q", cmd)
	}
}

func TestRouteFallbackConversation(t *testing.T) {
	conv := &stubConversation{reply: "Привет!"}
	r := New(nil, WithConversation(conv))
	out := r.Route(context.Background(), "как дела")
	assert.Equal(t, "conversation", out.Kind)
	assert.Equal(t, "Привет!", out.Reply)
}

func TestRouteMissingComponentsDoNotCrash(t *testing.T) {
	r := New(nil)
	for _, cmd := range []string{"погода", "новости", "напомни через 5 минут чай", "как дела"} {
		out := r.Route(context.Background(), cmd)
		assert.NotEmpty(t, out.Reply, "command %q", cmd)
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "включи свет", Sanitize("  включи\t\tсвет \n"))
	assert.Equal(t, "включи свет", Sanitize("включи\nсвет"),
		"line breaks must separate words, not delete them")
	assert.Equal(t, "тихо", Sanitize("ти\x00хо"))
	assert.Equal(t, "", Sanitize("\x01\x02 \n"))

	long := strings.Repeat("а", 600)
	got := Sanitize(long)
	assert.LessOrEqual(t, len(got), 500)
	assert.NotContains(t, got, "�")
}
