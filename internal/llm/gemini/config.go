package gemini

import (
	"os"
	"time"
)

// Config for the Gemini client.
type Config struct {
	APIKey      string        // if empty, falls back to env GEMINI_API_KEY
	Model       string        // e.g., "gemini-2.5-flash"
	Temperature float32       // default 0.1
	TopP        float32       // default 0.9
	TopK        int32         // default 30
	Timeout     time.Duration // per request; 0 = caller's deadline only
}

func (c Config) withDefaults() Config {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.1
	}
	if c.TopP <= 0 {
		c.TopP = 0.9
	}
	if c.TopK <= 0 {
		c.TopK = 30
	}
	return c
}
