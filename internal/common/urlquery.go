// Package common: urlquery.go собирает ссылки на сайт DevFlow:
// добавляет, заменяет и удаляет параметры query-строки, сохраняя путь.
package common

import (
	"net/url"
	"strings"
)

// SetQueryParam возвращает path с query-строкой, в которой key = value.
// Остальные параметры сохраняются. value == nil удаляет параметр.
//
// Пример:
//
//	v := "2"
//	SetQueryParam("/questions", "q=go&page=1", "page", &v) → "/questions?page=2&q=go"
func SetQueryParam(path, rawQuery, key string, value *string) string {
	values := parseQuery(rawQuery)
	if value == nil {
		values.Del(key)
	} else {
		values.Set(key, *value)
	}
	return buildURL(path, values)
}

// RemoveQueryParams возвращает path с query-строкой без перечисленных ключей.
//
// Пример:
//
//	RemoveQueryParams("/", "q=go&filter=new", []string{"q"}) → "/?filter=new"
func RemoveQueryParams(path, rawQuery string, keys []string) string {
	values := parseQuery(rawQuery)
	for _, k := range keys {
		values.Del(k)
	}
	return buildURL(path, values)
}

// parseQuery разбирает query-строку. Параметры без «=» считаются пустыми (null)
// и отбрасываются, как и пары, которые не удалось декодировать.
func parseQuery(rawQuery string) url.Values {
	values := url.Values{}
	rawQuery = strings.TrimPrefix(rawQuery, "?")

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, err := url.QueryUnescape(k)
		if err != nil || key == "" {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		values.Add(key, val)
	}
	return values
}

// buildURL склеивает путь и параметры. Ключи сортируются (url.Values.Encode),
// пробел кодируется как %20. Литеральный плюс Encode уже превратил в %2B.
func buildURL(path string, values url.Values) string {
	encoded := strings.ReplaceAll(values.Encode(), "+", "%20")
	if encoded == "" {
		return path
	}
	return path + "?" + encoded
}
