package smarthome

import (
	"fmt"
	"regexp"
	"strings"

	"mira/internal/logging"
)

var (
	turnOnRe  = regexp.MustCompile(`(?i)^(?:включи(?:ть)?|запусти)\s+(.+)$`)
	turnOffRe = regexp.MustCompile(`(?i)^(?:выключи(?:ть)?|отключи|останови)\s+(.+)$`)
	statusRe  = regexp.MustCompile(`(?i)^статус\s+(.+)$`)
)

// Controller turns spoken device commands into MQTT messages on
// <prefix>/<device>/set with ON/OFF payloads. It remembers the last state it
// set per device so status questions can be answered without a broker round
// trip.
type Controller struct {
	pub     Publisher
	prefix  string
	aliases map[string]string
	states  map[string]string
	logger  logging.Logger
}

func NewController(pub Publisher, prefix string, logger logging.Logger) *Controller {
	return &Controller{
		pub:    pub,
		prefix: strings.TrimSuffix(prefix, "/"),
		aliases: map[string]string{
			"свет":         "light",
			"лампу":        "light",
			"лампа":        "light",
			"чайник":       "kettle",
			"телевизор":    "tv",
			"розетку":      "socket",
			"розетка":      "socket",
			"обогреватель": "heater",
		},
		states: make(map[string]string),
		logger: logging.OrNop(logger),
	}
}

// Handle tries to interpret text as a device command. It returns the spoken
// response and whether the text was a device command at all.
func (c *Controller) Handle(text string) (string, bool) {
	text = strings.TrimSpace(text)

	if m := turnOnRe.FindStringSubmatch(text); m != nil {
		return c.set(m[1], "ON", "Включаю"), true
	}
	if m := turnOffRe.FindStringSubmatch(text); m != nil {
		return c.set(m[1], "OFF", "Выключаю"), true
	}
	if m := statusRe.FindStringSubmatch(text); m != nil {
		device := m[1]
		switch c.states[c.name(device)] {
		case "ON":
			return fmt.Sprintf("Устройство %s включено", device), true
		case "OFF":
			return fmt.Sprintf("Устройство %s выключено", device), true
		default:
			return fmt.Sprintf("Я ещё не управляла устройством %s", device), true
		}
	}
	return "", false
}

func (c *Controller) set(device, payload, verb string) string {
	if err := c.pub.Publish(c.topic(device, "set"), payload); err != nil {
		c.logger.Error("smart home %s %q: %v", payload, device, err)
		return "Не удалось управлять устройством " + device
	}
	c.states[c.name(device)] = payload
	return fmt.Sprintf("%s %s", verb, device)
}

// name maps a spoken device name to its topic segment: known aliases get
// their canonical name, everything else keeps the spoken words joined with
// underscores.
func (c *Controller) name(device string) string {
	name := strings.ToLower(strings.TrimSpace(device))
	if canonical, ok := c.aliases[name]; ok {
		return canonical
	}
	return strings.ReplaceAll(name, " ", "_")
}

func (c *Controller) topic(device, action string) string {
	return fmt.Sprintf("%s/%s/%s", c.prefix, c.name(device), action)
}
