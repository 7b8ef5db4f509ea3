package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/naimul214/Word-Prediction-API/IO"
	"github.com/naimul214/Word-Prediction-API/params"
	"github.com/naimul214/Word-Prediction-API/rnn"
	"github.com/naimul214/Word-Prediction-API/server"
	"github.com/naimul214/Word-Prediction-API/train"
)

var (
	prepareFlag bool
	trainFlag   bool
	serveFlag   bool
	cliFlag     bool
	historyFlag bool
	forceFlag   bool
	configPath  string
)

func init() {
	flag.BoolVar(&prepareFlag, "prepare", false, "Tokenize the corpus, export vocab.json and token id shards")
	flag.BoolVar(&trainFlag, "train", false, "Prepare data (cached unless -force) and train the model")
	flag.BoolVar(&serveFlag, "serve", false, "Serve GET /predict_next_word from the saved model")
	flag.BoolVar(&cliFlag, "cli", false, "Interactive client for a running server")
	flag.BoolVar(&historyFlag, "history", false, "Print recent training runs from the journal")
	flag.BoolVar(&forceFlag, "force", false, "Rebuild vocab and id shards even if cached")
	flag.StringVar(&configPath, "config", "", "YAML file overriding the default config")
}

func main() {
	flag.Parse()

	cfg, err := params.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	params.ApplyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	switch {
	case prepareFlag:
		if _, err := prepare(cfg); err != nil {
			log.Fatal(err)
		}
		fmt.Println("✨ Prepare complete")
	case trainFlag:
		if err := runTraining(cfg); err != nil {
			log.Fatal(err)
		}
	case serveFlag:
		pred, err := server.LoadPredictor(cfg)
		if err != nil {
			log.Fatalf("failed to load model: %v", err)
		}
		log.Fatal(server.NewServer(pred).ListenAndServe(cfg.Addr))
	case cliFlag:
		fmt.Printf("Starting CLI… (make sure the server is running at %s)\n", cfg.ServerURL)
		PredictCLI(cfg.ServerURL)
	case historyFlag:
		if err := printHistory(cfg); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Println("No flag passed. Use -prepare, -train, -serve, -cli or -history.")
		flag.Usage()
		os.Exit(2)
	}
}

func prepare(cfg params.TrainingConfig) (*IO.Dataset, error) {
	tok, err := IO.InitTokenizer()
	if err != nil {
		return nil, err
	}
	return IO.PrepareData(cfg, tok, forceFlag)
}

func runTraining(cfg params.TrainingConfig) error {
	t0 := time.Now()
	ds, err := prepare(cfg)
	if err != nil {
		return err
	}
	journal, err := train.OpenJournal(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	model := rnn.NewModelFromConfig(cfg, ds.Vocab.MaxID())
	fmt.Printf("Model: vocab %d -> embed %d -> lstm %d -> dense %d\n",
		ds.Vocab.Size(), cfg.EmbedDim, cfg.HiddenSize, model.VocabOut)

	if _, err := train.Train(model, ds, cfg, journal); err != nil {
		return err
	}
	fmt.Printf("Training finished in %v\n", time.Since(t0).Round(time.Second))
	return nil
}

func printHistory(cfg params.TrainingConfig) error {
	journal, err := train.OpenJournal(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer journal.Close()
	runs, err := journal.RecentRuns(20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No training runs recorded.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tEPOCHS\tLOSS\tVAL_ACC\tMODEL")
	for _, r := range runs {
		loss, acc := "-", "-"
		if r.LastLoss.Valid {
			loss = fmt.Sprintf("%.4f", r.LastLoss.Float64)
		}
		if r.LastValAcc.Valid {
			acc = fmt.Sprintf("%.4f", r.LastValAcc.Float64)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Status, r.Epochs, loss, acc, r.ModelPath)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	latest, err := journal.EpochHistory(runs[0].ID)
	if err != nil {
		return err
	}
	acc := make([]float64, len(latest))
	for i, m := range latest {
		acc[i] = m.ValAccuracy
	}
	fmt.Printf("\nval_accuracy per epoch, run %s\n", runs[0].ID)
	asciiPlot(os.Stdout, acc)
	return nil
}
