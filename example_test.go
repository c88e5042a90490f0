package getconfig_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Azhovan/getconfig"
	"github.com/Azhovan/getconfig/sourcefile"
)

// Example demonstrates layered loading from a config directory.
func Example() {
	dir, err := os.MkdirTemp("", "getconfig-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	files := map[string]string{
		"default.yaml":    "server:\n  host: localhost\n  port: 8080\nurl: http://${self.server.host}:${self.server.port}\n",
		"production.json": `{"server": {"host": "$$API_HOST", "port": "$PORT::number"}}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			log.Fatal(err)
		}
	}

	env := getconfig.MapEnv(map[string]string{"API_HOST": "api.example.com"})
	cfg, err := getconfig.NewLoader().
		WithSource(sourcefile.New(dir, sourcefile.Options{})).
		WithEnv(env).
		WithProfile("production").
		Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	url, _ := cfg.Get("url")
	port, _ := cfg.Get("server.port")
	fmt.Println(url.Interface())
	fmt.Println(port.Interface())
	fmt.Println(cfg.Env, cfg.IsDev)

	// Output:
	// http://api.example.com:8080
	// 8080
	// production false
}

// ExampleRegistry_Register shows a custom coercion type with arguments.
func ExampleRegistry_Register() {
	reg := getconfig.NewRegistry()
	reg.MustRegister("port", func(raw string, args ...string) (any, error) {
		return raw + "/" + args[0], nil
	})

	tree := getconfig.NewMapping()
	tree.Set("listen", getconfig.Scalar{V: "$LISTEN::port:tcp"})

	env := getconfig.MapEnv(map[string]string{"LISTEN": "443"})
	if _, err := getconfig.ResolveEnv(tree, env, reg); err != nil {
		log.Fatal(err)
	}

	v, _ := tree.Get("listen")
	fmt.Println(v.Interface())

	// Output:
	// 443/tcp
}

// ExampleDumpEffective prints each resolved value with the layer that set it.
func ExampleDumpEffective() {
	src := getconfig.StaticSource{
		"default": getconfig.NewMapping(),
		"local":   getconfig.NewMapping(),
	}
	src["default"].Set("name", getconfig.Scalar{V: "svc"})
	src["local"].Set("debug", getconfig.Scalar{V: true})

	cfg, err := getconfig.NewLoader().
		WithSource(src).
		WithEnv(getconfig.MapEnv(nil)).
		Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	if err := getconfig.DumpEffective(os.Stdout, cfg, getconfig.WithSources()); err != nil {
		log.Fatal(err)
	}

	// Output:
	// name: "svc" (source: default)
	// debug: true (source: local)
	// getconfig.env: "development" (source: metadata)
	// getconfig.isDev: true (source: metadata)
}
