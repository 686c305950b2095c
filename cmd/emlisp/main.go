package main

import (
	"flag"
	"log"
	"os"

	"github.com/emlisp/emlisp"
)

func main() {
	var (
		scriptPath = flag.String("script", "", "Path to a script file to evaluate")
		expr       = flag.String("e", "", "An expression to evaluate instead of a file")
		heapBytes  = flag.Int("heap-bytes", 1<<20, "Heap byte budget for the runtime")
		noStdlib   = flag.Bool("no-stdlib", false, "Skip preloading the standard-library prelude")
	)
	flag.Parse()

	if *scriptPath == "" && *expr == "" {
		log.Fatal("Neither -script nor -e informed")
	}

	cfg := emlisp.NewConfig()
	cfg.SetInt("heap.bytes", *heapBytes)
	cfg.SetBool("heap.preload_stdlib", !*noStdlib)

	rt, err := emlisp.NewRuntime(cfg)
	if err != nil {
		log.Fatalf("Can't start runtime: %s", err.Error())
	}

	source := *expr
	if *scriptPath != "" {
		data, err := os.ReadFile(*scriptPath)
		if err != nil {
			log.Fatalf("Can't read script file: %s", err.Error())
		}
		source = string(data)
	}

	forms, err := rt.ReadAll(source)
	if err != nil {
		log.Fatalf("Can't parse source: %s", err.Error())
	}

	expanded, err := rt.Expand(forms)
	if err != nil {
		log.Fatalf("Can't expand macros: %s", err.Error())
	}

	var result emlisp.Value
	for expanded != emlisp.NIL {
		result, err = rt.Eval(rt.Car(expanded))
		if err != nil {
			log.Fatalf("Can't evaluate form: %s", err.Error())
		}
		expanded = rt.Cdr(expanded)
	}

	log.Println(rt.Write(result))
}
