package session

import "github.com/eleven-am/asr-stream/internal/wire"

// Transcript pulls the recognized text out of a decoded server response.
// The service nests it under result.text; some deployments wrap the whole
// document in a payload_msg envelope. Returns false when the frame carries
// no text.
func Transcript(f wire.Frame) (string, bool) {
	doc, ok := f.Payload.(map[string]any)
	if !ok {
		return "", false
	}

	if text, ok := resultText(doc); ok {
		return text, true
	}
	if inner, ok := doc["payload_msg"].(map[string]any); ok {
		return resultText(inner)
	}
	return "", false
}

func resultText(doc map[string]any) (string, bool) {
	result, ok := doc["result"].(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := result["text"].(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}
