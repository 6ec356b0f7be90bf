package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// LimitScope область действия дневного лимита заявок.
type LimitScope string

const (
	LimitScopeGlobal  LimitScope = "global"   // лимит на заведение целиком
	LimitScopePerUser LimitScope = "per_user" // лимит на каждого гостя отдельно
)

// Venue карточка заведения для сообщений гостям.
type Venue struct {
	Name    string
	Phone   string
	Address string
	Hours   string
}

// HumanContacts контакты заведения одним блоком, HTML-разметка.
func (v Venue) HumanContacts() string {
	return fmt.Sprintf("<b>%s</b>\n📍 %s\n📞 %s\n🕒 %s", v.Name, v.Address, v.Phone, v.Hours)
}

type Config struct {
	TelegramToken      string `validate:"required"`
	AdminIDs           []int64
	AdminAlertBotToken string
	AdminAlertChatIDs  []int64

	Venue Venue

	ReservationDuration   time.Duration `validate:"gt=0"`
	TimeSlotStep          time.Duration `validate:"gt=0"`
	MinAdvanceDays        int           `validate:"gte=0"`
	OnlyTomorrow          bool
	ReminderLead          time.Duration `validate:"gte=0"`
	DailyReservationLimit int           `validate:"gte=1"`
	LimitScope            LimitScope    `validate:"oneof=global per_user"`
	AutoConfirmMaxParty   int           `validate:"gte=0"`
	BlockedDates          []string      `validate:"dive,datetime=02.01.2006"`
	WeeklyRules           string

	Location *time.Location `validate:"required"`

	DBDSN         string `validate:"required"`
	Environment   string
	LogLevel      string `validate:"omitempty,oneof=debug info warn error"`
	MigrationsDir string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	r := &reader{}

	loc, err := time.LoadLocation(r.str("LOCAL_TZ", "Europe/Moscow"))
	if err != nil {
		return nil, fmt.Errorf("load local timezone: %w", err)
	}

	cfg := &Config{
		TelegramToken:      r.str("TELEGRAM_BOT_TOKEN", ""),
		AdminIDs:           r.ids("ADMIN_IDS"),
		AdminAlertBotToken: r.str("ADMIN_ALERT_BOT_TOKEN", ""),
		AdminAlertChatIDs:  r.ids("ADMIN_ALERT_CHAT_IDS"),

		Venue: Venue{
			Name:    r.str("VENUE_NAME", "Your Venue"),
			Phone:   r.str("VENUE_PHONE", "+00 000 000 000"),
			Address: r.str("VENUE_ADDRESS", "City, Street 1"),
			Hours:   r.str("VENUE_HOURS", "Daily 10:00–22:00"),
		},

		ReservationDuration:   time.Duration(r.num("RESERVATION_DURATION_MIN", 120)) * time.Minute,
		TimeSlotStep:          time.Duration(r.num("TIME_SLOT_STEP_MIN", 30)) * time.Minute,
		MinAdvanceDays:        r.num("MIN_ADVANCE_DAYS", 1),
		OnlyTomorrow:          r.flag("ONLY_TOMORROW", false),
		ReminderLead:          time.Duration(r.num("REMINDER_HOURS_BEFORE", 2)) * time.Hour,
		DailyReservationLimit: r.num("DAILY_RESERVATION_LIMIT", 2),
		LimitScope:            LimitScope(strings.ToLower(r.str("RES_LIMIT_SCOPE", "global"))),
		AutoConfirmMaxParty:   r.num("AUTO_CONFIRM_MAX_PARTY", 4),
		BlockedDates:          r.list("BLOCKED_DATES"),
		WeeklyRules:           r.str("WEEKLY_RULES", ""),

		Location: loc,

		DBDSN:         r.str("DB_DSN", ""),
		Environment:   r.str("ENV", "development"),
		LogLevel:      strings.ToLower(r.str("LOG_LEVEL", "")),
		MigrationsDir: r.str("MIGRATIONS_DIR", "migrations"),
	}

	if r.err != nil {
		return nil, r.err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

// IsAdmin проверяет, входит ли телеграм-id в список администраторов.
// Пустой список означает, что административных команд нет ни у кого.
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// AlertRecipients чаты для служебных алертов: заданные явно, иначе
// чаты администраторов.
func (c *Config) AlertRecipients() []int64 {
	if len(c.AdminAlertChatIDs) > 0 {
		return c.AdminAlertChatIDs
	}
	return c.AdminIDs
}

// reader читает переменные окружения, запоминая первую ошибку разбора.
type reader struct {
	err error
}

func (r *reader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (r *reader) num(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("parse %s: %w", key, err)
		}
		return def
	}
	return n
}

func (r *reader) flag(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

// ids разбирает список телеграм-id через запятую, пропуская нечисловые
// элементы.
func (r *reader) ids(key string) []int64 {
	var out []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (r *reader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
