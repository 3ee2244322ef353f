package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"woodpost/pkg/job"
	"woodpost/pkg/mprfile"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("usage: %s job-file [flags]\n", os.Args[0])
		fmt.Printf("flags are also read from WOODPOST_ARGS and .env\n")
		return
	}

	// .env supplies defaults for local setups; a missing file is fine.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	argstring := strings.Join(os.Args[2:], " ")
	if argstring == "" {
		argstring = os.Getenv("WOODPOST_ARGS")
	}
	opts := job.ParseArgs(argstring, log)
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	jobFile := os.Args[1]
	data, err := os.ReadFile(jobFile)
	if err != nil {
		log.Fatalf("job file read error: %s", err)
	}

	var j job.Job
	if err := json.Unmarshal(data, &j); err != nil {
		log.Fatalf("job file parse error: %s", err)
	}

	content, err := job.NewExporter(log).Export(&j, opts)
	if err != nil {
		log.Fatalf("export error: %s", err)
	}

	if issues := mprfile.Verify(content); len(issues) > 0 {
		for _, issue := range issues {
			log.Warnf("output check: %s", issue)
		}
	}

	outFile := outputName(jobFile, j.Name)
	if err := mprfile.Write(outFile, content); err != nil {
		log.Fatalf("output write error: %s", err)
	}
	log.Infof("wrote %s", outFile)
}

// outputName derives the .mpr path from the job name, falling back to the
// job file's path.
func outputName(jobFile, name string) string {
	if name != "" {
		return filepath.Join(filepath.Dir(jobFile), name+".mpr")
	}
	base := strings.TrimSuffix(jobFile, filepath.Ext(jobFile))
	return base + ".mpr"
}
