package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/cs-au-dk/tipdetect/analysis/cfg"
	"github.com/cs-au-dk/tipdetect/analysis/memsafety"
	"github.com/cs-au-dk/tipdetect/analysis/ranges"
	"github.com/cs-au-dk/tipdetect/config"
	"github.com/cs-au-dk/tipdetect/ir"
	"github.com/cs-au-dk/tipdetect/utils"
)

var (
	configPath  = flag.String("config", "", "path to a TOML configuration file")
	task        = flag.String("task", "all", "analysis task: ranges, memsafety or all")
	fun         = flag.String("fun", "", "restrict the analyses to the named function")
	debug       = flag.Bool("debug", false, "enable debug traces on the diagnostic stream")
	widening    = flag.Bool("widening", true, "enable widening in the interval range analysis")
	maxExponent = flag.Int("max-exponent", 32, "size of the geometric landmark series ±2^k")
	noColorize  = flag.Bool("nocolor", false, "disable colorized output")
	visualize   = flag.String("visualize", "", "directory for graph exports (empty: no export)")
	visFormat   = flag.String("format", "dot", "graph export format: dot, svg or png")
)

var colorize = struct {
	Header    func(...interface{}) string
	Violation func(...interface{}) string
	Ok        func(...interface{}) string
}{
	Header: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiBlue).SprintFunc())(is...)
	},
	Violation: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiRed).SprintFunc())(is...)
	},
	Ok: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgGreen).SprintFunc())(is...)
	},
}

func main() {
	flag.Parse()
	utils.SetColorize(!*noColorize)

	conf := config.Default()
	if *configPath != "" {
		var err error
		if conf, err = config.Load(*configPath); err != nil {
			log.Fatalln("Failed to load configuration:", err)
		}
	}
	// Command line flags override the configuration file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			conf.Debug = *debug
		case "widening":
			conf.WideningEnabled = *widening
		case "max-exponent":
			conf.MaxExponent = *maxExponent
		}
	})

	if *task != "ranges" && *task != "memsafety" && *task != "all" {
		log.Fatalf("Unknown task %q", *task)
	}
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.tir...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	for _, path := range flag.Args() {
		fns, err := ir.ParseFile(path)
		if err != nil {
			log.Fatalln("Failed to parse IR:", err)
		}
		for _, fn := range fns {
			if *fun != "" && fn.Name() != *fun {
				continue
			}
			analyzeFunction(fn, conf)
		}
	}
}

func analyzeFunction(fn *ir.Function, conf config.Config) {
	if *task == "ranges" || *task == "all" {
		res, err := ranges.Analyze(fn, conf)
		if err != nil {
			log.Printf("Interval range analysis of %s failed: %v", fn.Name(), err)
		} else {
			fmt.Print(colorize.Header("*** interval range analysis for function "+fn.Name()+" ***") + "\n")
			for _, line := range resultLines(res) {
				fmt.Println(line)
			}
		}
	}

	if *task == "memsafety" || *task == "all" {
		res := memsafety.Analyze(fn, conf)
		fmt.Print(colorize.Header("*** memory safety analysis for function "+fn.Name()+" ***") + "\n")
		if conf.Debug {
			fmt.Print(res.PointsTo)
			fmt.Print(res.States)
		}
		if len(res.Violations) == 0 {
			fmt.Println(colorize.Ok("no violations"))
		}
		for _, v := range res.Violations {
			fmt.Println(colorize.Violation(v.Kind.String()) + ": " + v.Instr.String())
		}

		if *visualize != "" {
			exportGraphs(fn, res)
		}
	} else if *visualize != "" {
		exportCFG(fn)
	}
}

func resultLines(res *ranges.Result) []string {
	var lines []string
	for _, i := range res.Function().Instructions() {
		v, ok := i.(ir.Value)
		if !ok {
			continue
		}
		if itv, tracked := res.Interval(v); tracked {
			lines = append(lines, fmt.Sprintf("%s = %s", v.Name(), itv))
		}
	}
	return lines
}

func exportGraphs(fn *ir.Function, res *memsafety.Result) {
	exportCFG(fn)
	base := filepath.Join(*visualize, fn.Name()+"-pointsto")
	if out, err := res.PointsTo.Dot(fn.Name()).WriteFile(base, *visFormat); err != nil {
		log.Println("Failed to export points-to graph:", err)
	} else {
		log.Println("Exported points-to graph to", out)
	}
}

func exportCFG(fn *ir.Function) {
	base := filepath.Join(*visualize, fn.Name()+"-cfg")
	if out, err := cfg.Simplified(fn).Dot().WriteFile(base, *visFormat); err != nil {
		log.Println("Failed to export simplified CFG:", err)
	} else {
		log.Println("Exported simplified CFG to", out)
	}
}
