package ui

import (
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/paginate"
)

const jumpButtonsPerRow = 5

// RenderPager lays out the jump menu (when present) above the navigation
// row. Telegram buttons cannot be greyed out, so disabled controls keep
// their text but carry a noop callback.
func RenderPager(view paginate.View) (*models.InlineKeyboardMarkup, error) {
	noop, err := BuildPagerCallback(view.Token, paginate.Action{Kind: paginate.ActionNoop})
	if err != nil {
		return nil, err
	}

	var rows [][]models.InlineKeyboardButton

	var row []models.InlineKeyboardButton
	for _, option := range view.Jump {
		data := noop
		if !option.Disabled && !option.Current {
			data, err = BuildPagerCallback(view.Token, paginate.Action{Kind: paginate.ActionJump, Index: option.Index})
			if err != nil {
				return nil, err
			}
		}
		label := option.Label
		if option.Current {
			label = "· " + label + " ·"
		}
		row = append(row, models.InlineKeyboardButton{Text: label, CallbackData: data})
		if len(row) == jumpButtonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var nav []models.InlineKeyboardButton
	for _, control := range view.Controls {
		data := noop
		if !control.Disabled {
			data, err = BuildPagerCallback(view.Token, paginate.ActionFor(control.Control))
			if err != nil {
				return nil, err
			}
		}
		nav = append(nav, models.InlineKeyboardButton{Text: buttonText(control), CallbackData: data})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}, nil
}

func buttonText(control paginate.ControlView) string {
	if text := control.Style.Text(); text != "" {
		return text
	}
	return control.Control.String()
}

// PagerText is the message body for view. Embedded pages get a page
// counter footer.
func PagerText(view paginate.View) string {
	text := view.Page.Text
	if view.Embedded && view.Total > 1 {
		text += "\n\nPage " + itoa(view.Index+1) + "/" + itoa(view.Total)
	}
	return truncate(text, MaxMessageLen)
}
