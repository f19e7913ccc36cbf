package webhook

// metaPayload mirrors the Meta WhatsApp Business Cloud API webhook schema,
// trimmed to the fields the bot reads.
type metaPayload struct {
	Object string      `json:"object"`
	Entry  []metaEntry `json:"entry"`
}

type metaEntry struct {
	Changes []metaChange `json:"changes"`
}

type metaChange struct {
	Value metaValue `json:"value"`
}

type metaValue struct {
	Messages []metaMessage `json:"messages"`
}

type metaMessage struct {
	From string   `json:"from"`
	Type string   `json:"type"`
	Text metaText `json:"text"`
}

type metaText struct {
	Body string `json:"body"`
}

// firstTextMessage walks entry -> changes -> value -> messages and returns
// the first message of type "text".
func (p metaPayload) firstTextMessage() (metaMessage, bool) {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type == "text" {
					return msg, true
				}
			}
		}
	}
	return metaMessage{}, false
}
