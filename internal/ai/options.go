package ai

// DefaultAnthropicMaxTokens is sent when no max_tokens is configured; the
// Anthropic API requires one.
const DefaultAnthropicMaxTokens = 1024

// GenerationConfig holds provider-neutral sampling options. Nil pointers and an
// empty Stop are unset.
type GenerationConfig struct {
	MaxTokens         *int
	Temperature       *float64
	TopP              *float64
	TopK              *int
	Stop              []string
	RepetitionPenalty *float64
	FrequencyPenalty  *float64
	Truncate          *int
}

// Options are provider-native request options keyed by the provider's own
// parameter names. Integers are int64, floats are float64, lists are []string.
type Options map[string]any

// TranslateOptions maps gen onto the parameter names tag understands. Options a
// provider does not support are dropped.
func TranslateOptions(tag string, gen GenerationConfig) Options {
	o := Options{}
	switch tag {
	case ProviderOpenAI, ProviderTogether:
		o.setInt("max_tokens", gen.MaxTokens)
		o.setFloat("temperature", gen.Temperature)
		o.setFloat("top_p", gen.TopP)
		o.setFloat("frequency_penalty", gen.FrequencyPenalty)
		// repetition_penalty has no OpenAI equivalent; it becomes the frequency penalty.
		o.setFloat("frequency_penalty", gen.RepetitionPenalty)
		o.setInt("max_completion_tokens", gen.Truncate)
		o.setStop("stop", gen.Stop)

	case ProviderOllama:
		o.setInt("num_predict", gen.MaxTokens)
		o.setFloat("temperature", gen.Temperature)
		o.setFloat("top_p", gen.TopP)
		o.setInt("top_k", gen.TopK)
		o.setFloat("repeat_penalty", gen.RepetitionPenalty)
		o.setFloat("frequency_penalty", gen.FrequencyPenalty)
		o.setInt("num_ctx", gen.Truncate)
		o.setStop("stop", gen.Stop)

	case ProviderAnthropic:
		o["max_tokens"] = int64(DefaultAnthropicMaxTokens)
		o.setInt("max_tokens", gen.MaxTokens)
		o.setFloat("temperature", gen.Temperature)
		o.setFloat("top_p", gen.TopP)
		o.setInt("top_k", gen.TopK)
		o.setStop("stop_sequences", gen.Stop)

	case ProviderGemini:
		o.setInt("max_output_tokens", gen.MaxTokens)
		o.setFloat("temperature", gen.Temperature)
		o.setFloat("top_p", gen.TopP)
		o.setInt("top_k", gen.TopK)
		o.setStop("stop_sequences", gen.Stop)
	}
	return o
}

func (o Options) setInt(key string, v *int) {
	if v != nil {
		o[key] = int64(*v)
	}
}

func (o Options) setFloat(key string, v *float64) {
	if v != nil {
		o[key] = *v
	}
}

func (o Options) setStop(key string, v []string) {
	if len(v) > 0 {
		o[key] = append([]string(nil), v...)
	}
}

// Int returns an integer option.
func (o Options) Int(key string) (int64, bool) {
	v, ok := o[key].(int64)
	return v, ok
}

// Float returns a float option.
func (o Options) Float(key string) (float64, bool) {
	v, ok := o[key].(float64)
	return v, ok
}

// Strings returns a list option.
func (o Options) Strings(key string) ([]string, bool) {
	v, ok := o[key].([]string)
	return v, ok
}
