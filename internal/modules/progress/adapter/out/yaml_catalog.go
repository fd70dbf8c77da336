package out

import (
	_ "embed"
	"fmt"

	"dsaboost/internal/modules/progress/domain"
	progressout "dsaboost/internal/modules/progress/port/out"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var embeddedTopics []byte

type YAMLCatalog struct {
	topics []domain.Topic
	byID   map[string]domain.Topic
}

func NewEmbeddedCatalog() (progressout.Catalog, error) {
	return ParseCatalog(embeddedTopics)
}

func ParseCatalog(raw []byte) (progressout.Catalog, error) {
	var topics []domain.Topic
	if err := yaml.Unmarshal(raw, &topics); err != nil {
		return nil, fmt.Errorf("decode topic catalog: %w", err)
	}
	byID := make(map[string]domain.Topic, len(topics))
	for _, topic := range topics {
		if topic.ID == "" {
			return nil, fmt.Errorf("decode topic catalog: topic %q has no id", topic.Title)
		}
		if _, dup := byID[topic.ID]; dup {
			return nil, fmt.Errorf("decode topic catalog: duplicate topic %q", topic.ID)
		}
		byID[topic.ID] = topic
	}
	return &YAMLCatalog{topics: topics, byID: byID}, nil
}

func (c *YAMLCatalog) Topics() []domain.Topic {
	out := make([]domain.Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

func (c *YAMLCatalog) Find(topicID string) (domain.Topic, bool) {
	topic, ok := c.byID[topicID]
	return topic, ok
}
