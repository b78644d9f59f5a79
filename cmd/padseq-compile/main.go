package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/padseq/padseq"
	"github.com/padseq/padseq/compiler"
	"github.com/padseq/padseq/instrument"
	"github.com/padseq/padseq/version"
	"github.com/padseq/padseq/vm"
)

func filterExtensions(input map[string]string, extensions []string) map[string]string {
	ret := map[string]string{}
	for _, ext := range extensions {
		extWithDot := "." + ext
		if inputVal, ok := input[extWithDot]; ok {
			ret[extWithDot] = inputVal
		}
	}
	return ret
}

// parseBindings parses comma separated name=value pairs on top of the
// defaults of a one second A4 note.
func parseBindings(s string) (vm.Bindings, error) {
	b := vm.Bindings{"frequency": 440, "gain": 0.5, "pitch": 0, "startTime": 0, "stopTime": 1}
	if s == "" {
		return b, nil
	}
	for _, kv := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("binding %q should be name=value", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %v", kv, err)
		}
		b[strings.TrimSpace(name)] = v
	}
	return b, nil
}

func main() {
	safe := flag.Bool("n", false, "Never overwrite files; if file already exists and would be overwritten, give an error.")
	list := flag.Bool("l", false, "Do not write files; just list files that would change instead.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	jsonOut := flag.Bool("j", false, "Output the graph as .json file instead of compiling.")
	yamlOut := flag.Bool("y", false, "Output the graph as .yml file instead of compiling.")
	tmplDir := flag.String("t", "", "When compiling, use the templates in this directory instead of the standard templates.")
	outPath := flag.String("o", "", "Directory or filename where to write compiled output. Extension is ignored. Directory and its parents are created if needed. By default, everything is placed in the working directory.")
	extensionsOut := flag.String("e", "", "Output only the compiled files with these comma separated extensions. For example: dot,txt")
	bindingsFlag := flag.String("b", "", "Comma separated note bindings used when compiling, e.g. frequency=220,gain=0.8")
	sampleRate := flag.Int("sr", 44100, "Sample rate used when compiling.")
	preset := flag.String("p", "", "Compile a builtin preset instead of input files. One of: "+strings.Join(instrument.PresetNames(), ", "))
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if (flag.NArg() == 0 && *preset == "") || *help {
		flag.Usage()
		os.Exit(0)
	}
	bindings, err := parseBindings(*bindingsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	compile := !*jsonOut && !*yamlOut // if the user gives nothing to output, then the default behaviour is to compile the file
	var comp *compiler.Compiler
	if compile {
		if *tmplDir != "" {
			comp, err = compiler.NewFromTemplates(*tmplDir)
		} else {
			comp, err = compiler.New()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, `error creating compiler: %v`, err)
			os.Exit(1)
		}
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			fmt.Print(string(contents))
			return nil
		}
		_, name := filepath.Split(filename)
		var dir string
		if *outPath != "" {
			// check if it's an already existing directory and the user just forgot trailing slash
			if info, err := os.Stat(*outPath); err == nil && info.IsDir() {
				dir = *outPath
			} else {
				outdir, outname := filepath.Split(*outPath)
				if outdir != "" {
					dir = outdir
				}
				if outname != "" {
					name = outname
				}
			}
		}
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		original, err := os.ReadFile(f)
		if err == nil {
			if bytes.Equal(original, contents) {
				return nil // no need to update
			}
			if !*list && *safe {
				return fmt.Errorf("file %v would be overwritten by compiler", f)
			}
		}
		if *list {
			fmt.Println(f)
			return nil
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string, graph padseq.NodeGraphSpec) error {
		if compile {
			_, name := filepath.Split(filename)
			compiled, err := comp.Graph(strings.TrimSuffix(name, filepath.Ext(name)), graph, bindings, *sampleRate)
			if err != nil {
				return fmt.Errorf("compiling graph failed: %v", err)
			}
			if len(*extensionsOut) > 0 {
				compiled = filterExtensions(compiled, strings.Split(*extensionsOut, ","))
			}
			for extension, code := range compiled {
				if err := output(filename, extension, []byte(code)); err != nil {
					return fmt.Errorf("error outputting %v file: %v", extension, err)
				}
			}
		}
		if *jsonOut {
			jsonGraph, err := json.MarshalIndent(graph, "", "  ")
			if err != nil {
				return fmt.Errorf("could not marshal the graph as json file: %v", err)
			}
			if err := output(filename, ".json", jsonGraph); err != nil {
				return fmt.Errorf("error outputting json file: %v", err)
			}
		}
		if *yamlOut {
			yamlGraph, err := yaml.Marshal(graph)
			if err != nil {
				return fmt.Errorf("could not marshal the graph as yaml file: %v", err)
			}
			if err := output(filename, ".yml", yamlGraph); err != nil {
				return fmt.Errorf("error outputting yaml file: %v", err)
			}
		}
		return nil
	}
	processFile := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		var graph padseq.NodeGraphSpec
		if errJSON := json.Unmarshal(inputBytes, &graph); errJSON != nil {
			if graph, err = instrument.ParseGraph(inputBytes); err != nil {
				return fmt.Errorf("graph could not be unmarshaled as a .json (%v) or .yml (%v)", errJSON, err)
			}
		} else if err := graph.Validate(); err != nil {
			return err
		}
		return process(filename, graph)
	}
	retval := 0
	if *preset != "" {
		graph, err := instrument.LoadPreset(*preset)
		if err == nil {
			err = process(*preset, graph)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not process preset %v: %v\n", *preset, err)
			retval = 1
		}
	}
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			files := append(ymlfiles, jsonfiles...)
			for _, file := range files {
				if err := processFile(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else if err := processFile(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "padseq graph compiler. Input .yml or .json node graphs, outputs unit listings and Graphviz graphs (.txt and .dot files).\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
