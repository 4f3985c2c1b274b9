package i18n

import "strings"

// Translator retrieves localized messages for error codes.
// data provides optional values to embed in the message (for example,
// "expected" or "key"). Placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_key":        "schema keys must be strings without '.' or index syntax",
		"invalid_leaf":       "disallowed leaf type {value}",
		"not_homomorphic":    "list schema must hold exactly one element, got {count}",
		"nil_node":           "schema node is nil",
		"duplicate_key":      "duplicate key {key}",
		"required":           "required key {key} missing at {path}",
		"invalid_type":       "expected {expected}, got {actual}",
		"too_deep":           "nesting deeper than {max}",
		"missing_key":        "key {key} not found",
		"index_range":        "index {index} out of range (len {len})",
		"kind_mismatch":      "segment {segment} does not match container {container}",
		"syntax":             "malformed path",
		"unclaimed_override": "override paths not claimed by the schema: {paths}",
		"no_default":         "no default registered for kind {kind}",
	},
	"ja": {
		"invalid_key":        "スキーマのキーが不正です",
		"invalid_leaf":       "許可されていない型です: {value}",
		"not_homomorphic":    "リストスキーマの要素数は1つである必要があります: {count}",
		"nil_node":           "スキーマノードが nil です",
		"duplicate_key":      "キーが重複しています: {key}",
		"required":           "{path} に必須キーが不足しています: {key}",
		"invalid_type":       "型が不正です: {expected} を期待しましたが {actual} でした",
		"too_deep":           "ネストが深すぎます (最大 {max})",
		"missing_key":        "キーが見つかりません: {key}",
		"index_range":        "インデックスが範囲外です: {index} (長さ {len})",
		"kind_mismatch":      "パスの種類がコンテナと一致しません: {segment}",
		"syntax":             "パスの書式が不正です",
		"unclaimed_override": "スキーマに存在しない上書きパスです: {paths}",
		"no_default":         "既定値が登録されていない型です: {kind}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict, ok := dictionaries[t.lang]
	if !ok {
		dict = dictionaries["en"]
	}
	msg, ok := dict[code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
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
