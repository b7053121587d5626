package main

import (
	"time"
)

const (
	groqLocation = "https://api.groq.com/openai/v1"
	groqModel    = "llama-3.3-70b-versatile"
)

// Globals are shared by every command. Each flag can also come from the
// environment or a .env file.
type Globals struct {
	Debug        bool   `help:"Verbose development logging" env:"DEBUG"`
	LogFile      string `help:"Also write JSON logs to this rotating file" env:"LOG_FILE"`
	OtelEndpoint string `help:"OTLP/HTTP endpoint for traces (host:port)" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelInsecure bool   `help:"Export traces over plain HTTP" env:"OTEL_INSECURE"`

	Embedder         string        `help:"Embedding backend" enum:"huggingface,ollama,openai,google" default:"huggingface" env:"EMBEDDER"`
	EmbedderLocation string        `help:"Embedding service base URL" env:"EMBEDDER_LOCATION"`
	EmbedderKey      string        `help:"Embedding service API key" env:"HF_TOKEN"`
	EmbedderModel    string        `help:"Embedding model, empty for the backend default" env:"EMBEDDER_MODEL"`
	Dimension        int           `help:"Embedding dimension" default:"384" env:"EMBEDDING_DIMENSION"`
	EmbedTimeout     time.Duration `help:"Embedding request timeout" default:"60s" env:"EMBED_TIMEOUT"`

	Storer         string        `help:"Vector store backend" enum:"memory,pinecone,qdrant,postgres" default:"pinecone" env:"STORER"`
	StorerLocation string        `help:"Vector store URL or DSN" env:"STORER_LOCATION"`
	StorerKey      string        `help:"Vector store API key" env:"PINECONE_API_KEY"`
	Collection     string        `help:"Index or collection name" default:"customer-support" env:"PINECONE_INDEX_NAME"`
	Metric         string        `help:"Similarity metric" enum:"cosine,dotproduct,euclidean" default:"cosine" env:"METRIC"`
	StoreTimeout   time.Duration `help:"Vector store request timeout" default:"30s" env:"STORE_TIMEOUT"`
	PineconeCloud  string        `help:"Cloud for new Pinecone serverless indexes" default:"aws" env:"PINECONE_CLOUD"`
	PineconeRegion string        `help:"Region for new Pinecone serverless indexes" default:"us-east-1" env:"PINECONE_REGION"`

	Generator         string        `help:"Generation backend" enum:"openai,anthropic,google" default:"openai" env:"GENERATOR"`
	GeneratorLocation string        `help:"Generation base URL, Groq when empty for openai" env:"GENERATOR_LOCATION"`
	GeneratorKey      string        `help:"Generation API key" env:"GROQ_API_KEY"`
	GeneratorModel    string        `help:"Generation model, empty for the backend default (Groq llama-3.3-70b-versatile for openai)" env:"GENERATOR_MODEL"`
	Temperature       float32       `help:"Sampling temperature" default:"0.7" env:"TEMPERATURE"`
	MaxTokens         int           `help:"Maximum tokens per reply" default:"1024" env:"MAX_TOKENS"`
	GenerateTimeout   time.Duration `help:"Generation request timeout" default:"60s" env:"GENERATE_TIMEOUT"`

	WebhookUrl     string        `help:"Escalation webhook" env:"N8N_WEBHOOK_URL"`
	WebhookTimeout time.Duration `help:"Escalation webhook timeout" default:"30s" env:"WEBHOOK_TIMEOUT"`

	TopK      int     `help:"Matches retrieved per turn" default:"5" env:"TOP_K"`
	History   int     `help:"Prior messages included in the prompt" default:"5" env:"HISTORY"`
	Threshold float64 `help:"Escalate below this confidence" default:"0.5" env:"ESCALATION_THRESHOLD"`
}
