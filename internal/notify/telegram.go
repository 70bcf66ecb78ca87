package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tripmind/quota-service/internal/reconcile"
)

// TelegramNotifier дублирует краткий итог прогона в админский чат.
type TelegramNotifier struct {
	api       *tgbotapi.BotAPI
	adminChat int64
}

func NewTelegramNotifier(api *tgbotapi.BotAPI, adminChatID int64) *TelegramNotifier {
	return &TelegramNotifier{api: api, adminChat: adminChatID}
}

func (t *TelegramNotifier) NotifySummary(res reconcile.Result) error {
	text := fmt.Sprintf(
		"Сброс квот за %s завершён.\nПользователей: %d (обновлено %d, пропущено %d, с ошибками %d)\nПогашено грантов: %d\nПеренесено бустов: %d\nДлительность: %s",
		res.CurrentMonth,
		res.UsersProcessed,
		res.UsersUpdated,
		res.UsersSkipped,
		res.UsersWithErrors,
		res.BoostsExpired,
		res.BoostItinerariesSaved,
		res.Duration,
	)
	msg := tgbotapi.NewMessage(t.adminChat, text)
	if _, err := t.api.Send(msg); err != nil {
		return err
	}
	return nil
}
