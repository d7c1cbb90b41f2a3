package i18n

import "strings"

// Translator retrieves localized messages for issue codes.
// data provides optional values to embed in the message (for example,
// "min" or "max"); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			msg = "型が不正です"
		case "required":
			msg = "必須項目です"
		case "unknown_key":
			msg = "未知のキーです"
		case "too_small":
			msg = "{min} 以上の値を入力してください"
		case "too_big":
			msg = "{max} 以下の値を入力してください"
		case "too_short":
			msg = "{min} 文字(件)以上必要です"
		case "too_long":
			msg = "{max} 文字(件)以下にしてください"
		case "invalid_format":
			msg = "形式が不正です"
		case "invalid_value":
			msg = "値が不正です"
		case "parse_error":
			msg = "解析エラー"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			msg = "Invalid type"
		case "required":
			msg = "Required"
		case "unknown_key":
			msg = "Unknown key"
		case "too_small":
			msg = "Must be greater than or equal to {min}"
		case "too_big":
			msg = "Must be less than or equal to {max}"
		case "too_short":
			msg = "Must contain at least {min} item(s)"
		case "too_long":
			msg = "Must contain at most {max} item(s)"
		case "invalid_format":
			msg = "Invalid format"
		case "invalid_value":
			msg = "Invalid value"
		case "parse_error":
			msg = "Parse error"
		}
	}
	if msg == "" {
		return code
	}
	return fill(msg, data)
}

func fill(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
