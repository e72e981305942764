package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type RawConfigLoaderFunc func(ctx context.Context) (map[string]any, error)

func (fn RawConfigLoaderFunc) LoadRaw(ctx context.Context) (map[string]any, error) {
	if fn == nil {
		return map[string]any{}, nil
	}
	return fn(ctx)
}

// Normalize turns any accepted configuration form into a validated Config.
// Failures are reported as *InvalidConfigError.
func Normalize(raw any) (Config, error) {
	return NormalizeContext(context.Background(), raw)
}

func NormalizeContext(ctx context.Context, raw any) (Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	tree, err := rawTree(ctx, raw)
	if err != nil {
		return Config{}, invalidConfig(err)
	}
	if err := canonicalTopLevelKeys(tree); err != nil {
		return Config{}, invalidConfig(err)
	}
	if err := checkProviderKeys(tree); err != nil {
		return Config{}, invalidConfig(err)
	}
	cfg, err := mergeWithDefaults(DefaultConfig(), tree)
	if err != nil {
		return Config{}, invalidConfig(err)
	}
	return cfg.canonical(), nil
}

func rawTree(ctx context.Context, raw any) (map[string]any, error) {
	switch value := raw.(type) {
	case nil:
		return nil, fmt.Errorf("core: configuration is nil")
	case Config:
		return configToLayerMap(value), nil
	case *Config:
		if value == nil {
			return nil, fmt.Errorf("core: configuration is nil")
		}
		return configToLayerMap(*value), nil
	case map[string]any:
		return copyTree(value), nil
	case string:
		return FileConfigLoader{Path: value}.LoadRaw(ctx)
	case RawConfigLoader:
		if value == nil {
			return nil, fmt.Errorf("core: configuration loader is nil")
		}
		tree, err := value.LoadRaw(ctx)
		if err != nil {
			return nil, err
		}
		if tree == nil {
			tree = map[string]any{}
		}
		return copyTree(tree), nil
	default:
		if tree, ok := plainValue(raw).(map[string]any); ok {
			return tree, nil
		}
		return nil, fmt.Errorf("core: unsupported configuration type %T", raw)
	}
}

var configKeys = map[string]struct{}{
	"debug_mode":        {},
	"debug_file":        {},
	"transport_options": {},
	"callback":          {},
	"providers":         {},
	"provider_order":    {},
}

var configKeyAliases = map[string]string{
	"globalCallback":   "callback",
	"global_callback":  "callback",
	"debugMode":        "debug_mode",
	"debugFile":        "debug_file",
	"transportOptions": "transport_options",
	"providerOrder":    "provider_order",
}

// canonicalTopLevelKeys folds camelCase aliases onto the decoded keys and
// rejects anything else, so a misspelled key never decodes to a zero value.
func canonicalTopLevelKeys(tree map[string]any) error {
	for alias, key := range configKeyAliases {
		value, ok := tree[alias]
		if !ok {
			continue
		}
		if existing, taken := tree[key]; taken && !reflect.DeepEqual(existing, value) {
			return fmt.Errorf("core: configuration sets both %q and %q", alias, key)
		}
		tree[key] = value
		delete(tree, alias)
	}
	for key := range tree {
		if _, ok := configKeys[key]; !ok {
			return fmt.Errorf("core: unknown configuration key %q", key)
		}
	}
	return nil
}

func mergeWithDefaults(defaults Config, tree map[string]any) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			tree,
			opts.WithSnapshotID[map[string]any]("config"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	cfg, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// checkProviderKeys rejects keys that collapse to the same canonical name
// before the layers are merged.
func checkProviderKeys(tree map[string]any) error {
	providers, ok := tree["providers"]
	if !ok || providers == nil {
		return nil
	}
	table, ok := providers.(map[string]any)
	if !ok {
		return fmt.Errorf("core: providers must be a map, got %T", providers)
	}
	seen := make(map[string]string, len(table))
	for name := range table {
		key := CanonicalProviderName(name)
		if key == "" {
			return fmt.Errorf("core: provider name is required")
		}
		if previous, ok := seen[key]; ok {
			return fmt.Errorf("core: provider keys %q and %q collide as %q", previous, name, key)
		}
		seen[key] = name
	}
	return nil
}

func configToLayerMap(cfg Config) map[string]any {
	layer := map[string]any{
		"debug_mode":        string(cfg.DebugMode),
		"debug_file":        cfg.DebugFile,
		"callback":          cfg.Callback,
		"transport_options": copyAnyMap(cfg.TransportOptions),
	}
	if layer["transport_options"] == nil {
		layer["transport_options"] = map[string]any{}
	}
	providers := make(map[string]any, len(cfg.Providers))
	for name, provider := range cfg.Providers {
		providers[name] = providerToLayerMap(provider)
	}
	layer["providers"] = providers
	if len(cfg.ProviderOrder) > 0 {
		layer["provider_order"] = append([]string(nil), cfg.ProviderOrder...)
	}
	return layer
}

func providerToLayerMap(provider ProviderConfig) map[string]any {
	entry := map[string]any{
		"enabled": provider.Enabled,
	}
	if provider.Callback != "" {
		entry["callback"] = provider.Callback
	}
	if provider.Adapter != "" {
		entry["adapter"] = provider.Adapter
	}
	if provider.Scope != "" {
		entry["scope"] = provider.Scope
	}
	if len(provider.Keys) > 0 {
		entry["keys"] = stringMapToAny(provider.Keys)
	}
	if len(provider.Endpoints) > 0 {
		entry["endpoints"] = stringMapToAny(provider.Endpoints)
	}
	if len(provider.AuthorizeParams) > 0 {
		entry["authorize_url_parameters"] = stringMapToAny(provider.AuthorizeParams)
	}
	if len(provider.Options) > 0 {
		entry["options"] = copyAnyMap(provider.Options)
	}
	return entry
}

func stringMapToAny(src map[string]string) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func copyTree(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = plainValue(value)
	}
	return out
}

// plainValue rewrites typed maps with string keys and typed slices into
// map[string]any and []any, recursively, so callers may pass values such as
// map[string]map[string]any.
func plainValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return copyTree(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = plainValue(item)
		}
		return out
	case []byte:
		return typed
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = plainValue(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = plainValue(rv.Index(i).Interface())
		}
		return out
	default:
		return value
	}
}

var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// FileConfigLoader reads a YAML or JSON configuration file. Optional dotenv
// files provide values for ${VAR} placeholders; process environment wins.
type FileConfigLoader struct {
	Path     string
	EnvFiles []string
}

func (l FileConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	path := strings.TrimSpace(l.Path)
	if path == "" {
		return nil, fmt.Errorf("core: configuration path is required")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("core: unsupported configuration file %q", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("core: read configuration: %w", err)
	}
	env, err := l.environment()
	if err != nil {
		return nil, err
	}
	expanded := envPlaceholder.ReplaceAllStringFunc(string(content), func(match string) string {
		parts := envPlaceholder.FindStringSubmatch(match)
		if value, ok := env[parts[1]]; ok {
			return value
		}
		return parts[2]
	})
	return ParseConfigDocument([]byte(expanded))
}

func (l FileConfigLoader) environment() (map[string]string, error) {
	env := map[string]string{}
	files := make([]string, 0, len(l.EnvFiles))
	for _, file := range l.EnvFiles {
		if file = strings.TrimSpace(file); file != "" {
			files = append(files, file)
		}
	}
	if len(files) > 0 {
		values, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("core: read env files: %w", err)
		}
		for key, value := range values {
			env[key] = value
		}
	}
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			env[key] = value
		}
	}
	return env, nil
}

// ParseConfigDocument decodes a YAML (or JSON) document and records the
// written order of the providers table under provider_order, unless the
// document sets it explicitly.
func ParseConfigDocument(content []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("core: parse configuration: %w", err)
	}
	tree := map[string]any{}
	if len(doc.Content) == 0 {
		return tree, nil
	}
	root := doc.Content[0]
	if err := root.Decode(&tree); err != nil {
		return nil, fmt.Errorf("core: decode configuration: %w", err)
	}
	for _, key := range []string{"provider_order", "providerOrder"} {
		if _, explicit := tree[key]; explicit {
			return tree, nil
		}
	}
	if order := providerDocumentOrder(root); len(order) > 0 {
		tree["provider_order"] = order
	}
	return tree, nil
}

func providerDocumentOrder(root *yaml.Node) []any {
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "providers" {
			continue
		}
		table := root.Content[i+1]
		if table.Kind != yaml.MappingNode {
			return nil
		}
		order := make([]any, 0, len(table.Content)/2)
		for j := 0; j+1 < len(table.Content); j += 2 {
			order = append(order, table.Content[j].Value)
		}
		return order
	}
	return nil
}
