package configs

import "embed"

//go:embed knowledge.yaml
var FS embed.FS

const KnowledgeFile = "knowledge.yaml"
