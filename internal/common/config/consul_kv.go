package config

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/consul/api"
	"github.com/kelseyhightower/envconfig"
)

// LoadConfigFromConsulKV 从 Consul KV 读取配置，替代本地 JSON 文件。
// 与 LoadConfig 同一套优先级：默认值 <- KV JSON <- 环境变量。
//
// 约定：
// - key 对应的 value 必须是与 Config 同构的 JSON
// - 只负责一次性「读取 + 解析」，是否做动态 watch 由上层决定
func LoadConfigFromConsulKV(consulHost string, consulPort int, key string) (*Config, error) {
	if key == "" {
		return nil, fmt.Errorf("consul kv key is empty")
	}

	client, err := api.NewClient(&api.Config{
		Address: fmt.Sprintf("%s:%d", consulHost, consulPort),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	pair, _, err := client.KV().Get(key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get consul kv key=%s: %w", key, err)
	}
	if pair == nil || len(pair.Value) == 0 {
		return nil, fmt.Errorf("consul kv key=%s is empty or not found", key)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(pair.Value, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consul kv json key=%s: %w", key, err)
	}
	// 密钥等敏感项仍然允许环境变量覆盖
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}
