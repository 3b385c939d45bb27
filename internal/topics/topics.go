// Package topics holds the PosturAI conversation topics.
package topics

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var catalogYAML []byte

var ErrUnknownTopic = errors.New("unknown topic")

// Topic is a conversation subject with its quick questions.
type Topic struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Icon        string   `yaml:"icon" json:"icon"`
	Description string   `yaml:"description" json:"description"`
	Color       string   `yaml:"color" json:"color"`
	Questions   []string `yaml:"questions" json:"questions"`
}

// Greeting is the first assistant message of a conversation on this topic.
func (t Topic) Greeting() string {
	return fmt.Sprintf("Hi! I'm PosturAI. I'm here to help you with %s. Choose a question below or ask me anything about this topic!",
		strings.ToLower(t.Title))
}

// Context is the topic description forwarded with every question.
func (t Topic) Context() string {
	return fmt.Sprintf("Topic: %s - %s", t.Title, t.Description)
}

// Catalog is an ordered, id-indexed set of topics.
type Catalog struct {
	topics []Topic
	byID   map[string]int
}

// Parse decodes a YAML topic list. Ids must be present and unique.
func Parse(data []byte) (*Catalog, error) {
	var list []Topic
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse topics: %w", err)
	}

	c := &Catalog{topics: list, byID: make(map[string]int, len(list))}
	for i, t := range list {
		if t.ID == "" {
			return nil, fmt.Errorf("topic %d has no id", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate topic id %q", t.ID)
		}
		c.byID[t.ID] = i
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the topics in display order.
func (c *Catalog) All() []Topic {
	out := make([]Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

// Get looks a topic up by id.
func (c *Catalog) Get(id string) (Topic, error) {
	i, ok := c.byID[id]
	if !ok {
		return Topic{}, fmt.Errorf("%w: %q", ErrUnknownTopic, id)
	}
	return c.topics[i], nil
}
