package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	maskevaluator "github.com/menta2k/mask-evaluator"
	"github.com/menta2k/mask-evaluator/internal/config"
	"github.com/menta2k/mask-evaluator/internal/utils"
)

func main() {
	var pred, truth, out, csvOut, exts, configPath, envFile, saveConfig string
	var autoOrient bool

	flag.StringVar(&pred, "pred", "", "directory of predicted masks (png/jpg/jpeg)")
	flag.StringVar(&truth, "truth", "", "directory of ground truth masks with identical filenames")
	flag.StringVar(&out, "out", "", "report file path (default ./iou_results.txt)")
	flag.StringVar(&csvOut, "csv", "", "optional CSV export of per-image scores")
	flag.StringVar(&exts, "ext", "", "comma separated mask extensions (default png,jpg,jpeg)")
	flag.StringVar(&configPath, "config", "", "JSON config file (default "+config.GetConfigPath()+" when present)")
	flag.StringVar(&saveConfig, "save-config", "", "write the resolved config to this JSON file")
	flag.StringVar(&envFile, "env", ".env", "dotenv file with MASK_IOU_* overrides")
	flag.BoolVar(&autoOrient, "autoorient", false, "apply EXIF orientation to JPEG masks")

	flag.Parse()

	cfg, loadedFrom, err := config.Resolve(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if loadedFrom != "" {
		log.Printf("using config %s", loadedFrom)
	}
	cfg.ApplyEnv(envFile)

	// Flags win over file and environment
	if pred != "" {
		cfg.Evaluation.PredDir = pred
	}
	if truth != "" {
		cfg.Evaluation.TruthDir = truth
	}
	if out != "" {
		cfg.Output.ReportFile = out
	}
	if csvOut != "" {
		cfg.Output.CSVFile = csvOut
	}
	if list := utils.SplitList(exts); len(list) > 0 {
		cfg.Evaluation.Extensions = list
	}
	if autoOrient {
		cfg.Evaluation.AutoOrient = true
	}

	if saveConfig != "" {
		if err := cfg.SaveToFile(saveConfig); err != nil {
			log.Fatal(err)
		}
		logWritten(saveConfig)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("usage: %s -pred predictions/ -truth ground_truth/ [-out iou_results.txt] [-csv scores.csv] [-ext png,jpg,jpeg] [-config config.json]: %v",
			filepath.Base(os.Args[0]), err)
	}

	evaluator := maskevaluator.NewWithOptions(maskevaluator.Options{
		Extensions: cfg.Evaluation.Extensions,
		Console:    os.Stdout,
		CSVFile:    cfg.Output.CSVFile,
		AutoOrient: cfg.Evaluation.AutoOrient,
	})

	if _, err := evaluator.Evaluate(cfg.Evaluation.PredDir, cfg.Evaluation.TruthDir, cfg.Output.ReportFile); err != nil {
		log.Fatal(err)
	}

	logWritten(cfg.Output.ReportFile)
	if cfg.Output.CSVFile != "" {
		logWritten(cfg.Output.CSVFile)
	}
}

func logWritten(path string) {
	info, err := os.Stat(path)
	if err != nil {
		log.Printf("wrote %s", path)
		return
	}
	log.Printf("wrote %s (%s)", path, utils.FormatFileSize(info.Size()))
}
