package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Bracket 描述 JSON 最外層的括號種類
type Bracket struct {
	Open  byte
	Close byte
}

var (
	// ObjectBracket 對應 JSON 物件
	ObjectBracket = Bracket{Open: '{', Close: '}'}
	// ArrayBracket 對應 JSON 陣列
	ArrayBracket = Bracket{Open: '[', Close: ']'}
)

// ErrNoJSONFound 文字中找不到對應的括號
var ErrNoJSONFound = errors.New("no JSON payload found")

var (
	openingFencePattern = regexp.MustCompile("^```[A-Za-z0-9_-]*")
	closingFencePattern = regexp.MustCompile("```$")
)

// StripCodeFences 移除前後空白與開頭、結尾的 ``` / ```json 標記，內文不變
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	text = openingFencePattern.ReplaceAllString(text, "")
	text = closingFencePattern.ReplaceAllString(strings.TrimSpace(text), "")
	return strings.TrimSpace(text)
}

// ExtractJSON 從模型輸出中擷取第一個起始括號到最後一個結束括號之間的內容並解析到 v。
//
// 若該區段不是合法 JSON（例如結尾說明文字也含有結束括號），改從第一個起始括號
// 串流解碼一個完整值；仍失敗時嘗試補上未加引號的鍵。
func ExtractJSON(raw string, kind Bracket, v interface{}) error {
	text := StripCodeFences(raw)

	start := strings.IndexByte(text, kind.Open)
	end := strings.LastIndexByte(text, kind.Close)
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("%w: expected %c...%c", ErrNoJSONFound, kind.Open, kind.Close)
	}

	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		var first json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[start:]))
		switch {
		case dec.Decode(&first) == nil:
			candidate = string(first)
		case json.Valid([]byte(QuoteJSONKeys(candidate))):
			candidate = QuoteJSONKeys(candidate)
		}
	}

	if err := ParseJSON(candidate, v); err != nil {
		return fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return nil
}

// ParseJSON 解析 JSON 字符串到結構體，數字保留為 json.Number
func ParseJSON(data string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

var unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// QuoteJSONKeys 將未加雙引號的鍵補上雙引號
func QuoteJSONKeys(raw string) string {
	return unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
}
