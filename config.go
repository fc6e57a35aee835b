// Copyright 2025 Naren Yellavula
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cybrota/clinic/registry"
	"gopkg.in/yaml.v3"
)

const configFileName = ".clinic.yaml"

type CategoriesConfig struct {
	List string `yaml:"list"`
	Tree string `yaml:"tree"`
}

type OutputConfig struct {
	ListPath     string `yaml:"list_path"`
	TreePath     string `yaml:"tree_path"`
	CombinedPath string `yaml:"combined_path"`
}

type LoaderConfig struct {
	ShowProgress bool `yaml:"show_progress"`
}

type UIConfig struct {
	DetailCacheMinutes int  `yaml:"detail_cache_minutes"`
	Plain              bool `yaml:"plain"`
}

type Config struct {
	Categories CategoriesConfig `yaml:"categories"`
	Output     OutputConfig     `yaml:"output"`
	Load       LoaderConfig     `yaml:"load"`
	UI         UIConfig         `yaml:"ui"`
}

var defaultConfig = Config{
	Categories: CategoriesConfig{
		List: string(registry.DefaultCategories.List),
		Tree: string(registry.DefaultCategories.Tree),
	},
	Output: OutputConfig{
		ListPath: "patients_list.txt",
		TreePath: "patients_tree.txt",
	},
	Load: LoaderConfig{
		ShowProgress: true,
	},
	UI: UIConfig{
		DetailCacheMinutes: 30,
	},
}

// ReadConfig loads path, or ~/.clinic.yaml when path is empty. A missing
// file yields the defaults. Keys absent from the file keep their defaults.
func ReadConfig(path string) (*Config, error) {
	config := defaultConfig

	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return &config, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &config, nil
	}
	if err != nil {
		return &config, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		fallback := defaultConfig
		return &fallback, fmt.Errorf("failed to parse config file %s: %v", path, err)
	}
	if err := config.validate(); err != nil {
		fallback := defaultConfig
		return &fallback, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if len(c.Categories.List) != 1 || len(c.Categories.Tree) != 1 {
		return fmt.Errorf("categories must be single letters, got list=%q tree=%q",
			c.Categories.List, c.Categories.Tree)
	}
	if c.Categories.List == c.Categories.Tree {
		return fmt.Errorf("list and tree categories must differ, both are %q", c.Categories.List)
	}
	if c.Output.ListPath == "" || c.Output.TreePath == "" {
		return fmt.Errorf("output.list_path and output.tree_path are required")
	}
	out := c.Output
	if filepath.Clean(out.ListPath) == filepath.Clean(out.TreePath) {
		return fmt.Errorf("output.list_path and output.tree_path must differ, both are %q", out.ListPath)
	}
	if out.CombinedPath != "" {
		combined := filepath.Clean(out.CombinedPath)
		if combined == filepath.Clean(out.ListPath) || combined == filepath.Clean(out.TreePath) {
			return fmt.Errorf("output.combined_path %q overlaps another output file", out.CombinedPath)
		}
	}
	return nil
}

// RegistryCategories converts the configured letters.
func (c *Config) RegistryCategories() registry.Categories {
	return registry.Categories{
		List: c.Categories.List[0],
		Tree: c.Categories.Tree[0],
	}
}

func (c *Config) Targets() registry.Targets {
	return registry.Targets{
		ListPath:     c.Output.ListPath,
		TreePath:     c.Output.TreePath,
		CombinedPath: c.Output.CombinedPath,
	}
}

func (c *Config) DetailCacheExpiration() time.Duration {
	if c.UI.DetailCacheMinutes <= 0 {
		return detailCacheExpiration
	}
	return time.Duration(c.UI.DetailCacheMinutes) * time.Minute
}

func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, configFileName), nil
}

func createDefaultConfigFile(configPath string) error {
	data, err := yaml.Marshal(&defaultConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %v", err)
	}

	err = os.WriteFile(configPath, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

func displaySettings(configPath string) {
	if configPath == "" {
		p, err := getConfigPath()
		if err != nil {
			fmt.Printf("❌ Failed to get config path: %v\n", err)
			return
		}
		configPath = p
	}

	configExists := true
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configExists = false
		fmt.Printf("📝 Configuration file not found. Creating default configuration...\n\n")

		if err := createDefaultConfigFile(configPath); err != nil {
			fmt.Printf("❌ Failed to create default config file: %v\n", err)
			return
		}
		fmt.Printf("✅ Created default configuration at: %s\n\n", configPath)
	}

	config, err := ReadConfig(configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		return
	}

	fmt.Printf("🔧 Clinic Configuration Settings\n")
	fmt.Printf("═══════════════════════════════════\n\n")

	if configExists {
		fmt.Printf("📍 Config file: %s\n", configPath)
	} else {
		fmt.Printf("📍 Config file: %s (newly created)\n", configPath)
	}

	fmt.Printf("📊 Current settings:\n\n")

	fmt.Printf("🗂  %sCategories:%s\n", Green, Reset)
	fmt.Printf("  • %slist%s: %s\n", Green, Reset, config.Categories.List)
	fmt.Printf("    Patients kept in descending name order\n")
	fmt.Printf("  • %stree%s: %s\n", Green, Reset, config.Categories.Tree)
	fmt.Printf("    Patients kept in ascending name order\n\n")

	fmt.Printf("💾 %sOutput:%s\n", Green, Reset)
	fmt.Printf("  • %slist_path%s: %s\n", Green, Reset, config.Output.ListPath)
	fmt.Printf("  • %stree_path%s: %s\n", Green, Reset, config.Output.TreePath)
	combined := config.Output.CombinedPath
	if combined == "" {
		combined = "(disabled)"
	}
	fmt.Printf("  • %scombined_path%s: %s\n\n", Green, Reset, combined)

	fmt.Printf("⚙️  %sSession:%s\n", Green, Reset)
	fmt.Printf("  • %sshow_progress%s: %t\n", Green, Reset, config.Load.ShowProgress)
	fmt.Printf("  • %sdetail_cache_minutes%s: %d\n", Green, Reset, config.UI.DetailCacheMinutes)
	fmt.Printf("  • %splain%s: %t\n\n", Green, Reset, config.UI.Plain)

	fmt.Printf("💡 To write every patient into one extra file, edit %s:\n", configPath)
	fmt.Printf("   output:\n     combined_path: patients_all.txt\n")
}
