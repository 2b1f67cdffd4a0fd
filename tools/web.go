package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/modumentor/bridge/errors"
)

const webToolTimeout = 15 * time.Second

// httpGet fetches a URL with the tool timeout and returns the response body.
func httpGet(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, webToolTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid request URL '%s'", rawURL)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to '%s' failed", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("request to '%s' returned status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// DictionaryTool looks up word definitions via the free dictionaryapi.dev API.
type DictionaryTool struct {
	client  *http.Client
	baseURL string
}

func NewDictionaryTool() *DictionaryTool {
	return &DictionaryTool{
		client:  &http.Client{Timeout: webToolTimeout},
		baseURL: "https://api.dictionaryapi.dev/api/v2/entries/en",
	}
}

func (t *DictionaryTool) Name() string { return "dictionary" }
func (t *DictionaryTool) Description() string {
	return "Looks up the definition of an English word. Args: word (string)."
}

func (t *DictionaryTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	word, ok := args["word"].(string)
	if !ok || word == "" {
		return "", errors.New("missing or invalid 'word' argument")
	}

	body, err := httpGet(ctx, t.client, t.baseURL+"/"+url.PathEscape(word))
	if err != nil {
		return "", err
	}

	var entries []struct {
		Word     string `json:"word"`
		Meanings []struct {
			PartOfSpeech string `json:"partOfSpeech"`
			Definitions  []struct {
				Definition string `json:"definition"`
			} `json:"definitions"`
		} `json:"meanings"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", errors.Wrapf(err, "could not parse dictionary response for '%s'", word)
	}
	if len(entries) == 0 || len(entries[0].Meanings) == 0 || len(entries[0].Meanings[0].Definitions) == 0 {
		return "", errors.New("no definition found for '%s'", word)
	}

	m := entries[0].Meanings[0]
	return fmt.Sprintf("%s (%s): %s", entries[0].Word, m.PartOfSpeech, m.Definitions[0].Definition), nil
}

func (t *DictionaryTool) ProbeQuery() string { return "test" }

func (t *DictionaryTool) Probe(ctx context.Context) (string, error) {
	if _, err := t.Execute(ctx, map[string]interface{}{"word": "test"}); err != nil {
		return "", err
	}
	return "Dictionary tool is available and working", nil
}

// WeatherTool reports current conditions via the wttr.in plain-text API.
type WeatherTool struct {
	client  *http.Client
	baseURL string
}

func NewWeatherTool() *WeatherTool {
	return &WeatherTool{
		client:  &http.Client{Timeout: webToolTimeout},
		baseURL: "https://wttr.in",
	}
}

func (t *WeatherTool) Name() string { return "weather" }
func (t *WeatherTool) Description() string {
	return "Reports the current weather for a location. Args: location (string, optional)."
}

func (t *WeatherTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	location, _ := args["location"].(string)

	body, err := httpGet(ctx, t.client, fmt.Sprintf("%s/%s?format=3", t.baseURL, url.PathEscape(location)))
	if err != nil {
		return "", err
	}
	report := strings.TrimSpace(string(body))
	if report == "" {
		return "", errors.New("empty weather report for '%s'", location)
	}
	return report, nil
}

func (t *WeatherTool) ProbeQuery() string { return "current weather" }

func (t *WeatherTool) Probe(ctx context.Context) (string, error) {
	if _, err := t.Execute(ctx, map[string]interface{}{}); err != nil {
		return "", err
	}
	return "Weather tool is available and working", nil
}

// WebSearchTool queries the DuckDuckGo instant-answer API.
type WebSearchTool struct {
	client  *http.Client
	baseURL string
}

func NewWebSearchTool() *WebSearchTool {
	return &WebSearchTool{
		client:  &http.Client{Timeout: webToolTimeout},
		baseURL: "https://api.duckduckgo.com",
	}
}

func (t *WebSearchTool) Name() string { return "web_search" }
func (t *WebSearchTool) Description() string {
	return "Searches the web for a short factual answer. Args: query (string)."
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return "", errors.New("missing or invalid 'query' argument")
	}

	searchURL := fmt.Sprintf("%s/?q=%s&format=json&no_html=1", t.baseURL, url.QueryEscape(query))
	body, err := httpGet(ctx, t.client, searchURL)
	if err != nil {
		return "", err
	}

	var answer struct {
		AbstractText string `json:"AbstractText"`
		Answer       string `json:"Answer"`
		Heading      string `json:"Heading"`
	}
	if err := json.Unmarshal(body, &answer); err != nil {
		return "", errors.Wrapf(err, "could not parse search response")
	}

	switch {
	case answer.Answer != "":
		return answer.Answer, nil
	case answer.AbstractText != "":
		return answer.AbstractText, nil
	case answer.Heading != "":
		return fmt.Sprintf("Top result: %s", answer.Heading), nil
	}
	return fmt.Sprintf("No instant answer found for '%s'", query), nil
}

func (t *WebSearchTool) ProbeQuery() string { return "latest news" }

func (t *WebSearchTool) Probe(ctx context.Context) (string, error) {
	if _, err := t.Execute(ctx, map[string]interface{}{"query": "latest news"}); err != nil {
		return "", err
	}
	return "Web search tool is available and working", nil
}
