package train

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/naimul214/Word-Prediction-API/IO"
	"github.com/naimul214/Word-Prediction-API/optimizations"
	"github.com/naimul214/Word-Prediction-API/params"
	"github.com/naimul214/Word-Prediction-API/rnn"
	"github.com/naimul214/Word-Prediction-API/utils"
	"gonum.org/v1/gonum/mat"
)

var ErrNoTrainingData = errors.New("no training sequences")

// EpochMetrics is one row of the training history.
type EpochMetrics struct {
	Epoch       int
	Loss        float64
	Accuracy    float64
	ValLoss     float64
	ValAccuracy float64
	Duration    time.Duration
}

// Trainer fits a model on a prepared dataset with Adam.
type Trainer struct {
	Model   *rnn.Model
	Data    *IO.Dataset
	Cfg     params.TrainingConfig
	Journal *Journal // optional

	opt     *optimizations.Adam
	workers []*rnn.Model // gradient clones of Model
}

func NewTrainer(model *rnn.Model, ds *IO.Dataset, cfg params.TrainingConfig, journal *Journal) *Trainer {
	n := cfg.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	n = max(1, min(n, cfg.BatchSize))
	tr := &Trainer{
		Model:   model,
		Data:    ds,
		Cfg:     cfg,
		Journal: journal,
		opt:     optimizations.NewAdam(cfg.LearningRate, cfg.AdamBeta1, cfg.AdamBeta2, cfg.AdamEps),
	}
	for range n {
		tr.workers = append(tr.workers, model.CloneForGradsOnly())
	}
	return tr
}

// Train is the one-call entry point: build a trainer, run every epoch and
// save the model to cfg.ModelPath.
func Train(model *rnn.Model, ds *IO.Dataset, cfg params.TrainingConfig, journal *Journal) ([]EpochMetrics, error) {
	return NewTrainer(model, ds, cfg, journal).Run()
}

// Run trains for Cfg.Epochs epochs of Cfg.StepsPerEpoch batches. The train
// iterator rewinds whenever it runs out, so an epoch is never cut short.
// Validation restarts from the first batch every epoch.
func (tr *Trainer) Run() (history []EpochMetrics, err error) {
	if tr.Data.Train.Pairs() == 0 {
		return nil, ErrNoTrainingData
	}

	runID := uuid.NewString()
	if tr.Journal != nil {
		if runID, err = tr.Journal.StartRun(tr.Cfg); err != nil {
			return nil, err
		}
		defer func() {
			if ferr := tr.Journal.FinishRun(runID, err); ferr != nil && err == nil {
				err = ferr
			}
		}()
	}
	tr.Model.RunID = runID

	if dir := filepath.Dir(tr.Cfg.LogPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	logFile, err := os.Create(tr.Cfg.LogPath)
	if err != nil {
		return nil, fmt.Errorf("create training log: %w", err)
	}
	defer logFile.Close()
	logWriter := csv.NewWriter(logFile)
	logWriter.Write([]string{"epoch", "loss", "accuracy", "val_loss", "val_accuracy"})
	defer logWriter.Flush()

	fmt.Printf("Run %s: %d train pairs, %d val pairs, vocab out %d\n",
		runID, tr.Data.Train.Pairs(), tr.Data.Val.Pairs(), tr.Model.VocabOut)

	for e := 0; e < tr.Cfg.Epochs; e++ {
		start := time.Now()

		var train rnn.StepStats
		for s := 0; s < tr.Cfg.StepsPerEpoch; s++ {
			batch, ok := tr.Data.Train.Next()
			if !ok {
				tr.Data.Train.Reset()
				batch, _ = tr.Data.Train.Next()
			}
			train.Add(tr.Step(batch))
		}
		val := Evaluate(tr.Model, tr.Data.Val, tr.Cfg.ValidationSteps)

		m := EpochMetrics{
			Epoch:       e + 1,
			Loss:        train.MeanLoss(),
			Accuracy:    train.Accuracy(),
			ValLoss:     val.MeanLoss(),
			ValAccuracy: val.Accuracy(),
			Duration:    time.Since(start),
		}
		history = append(history, m)

		fmt.Printf("Epoch %d/%d - loss: %.4f - accuracy: %.4f - val_loss: %.4f - val_accuracy: %.4f - %v\n",
			m.Epoch, tr.Cfg.Epochs, m.Loss, m.Accuracy, m.ValLoss, m.ValAccuracy, m.Duration.Round(time.Millisecond))

		logWriter.Write([]string{
			strconv.Itoa(m.Epoch),
			formatFloat(m.Loss), formatFloat(m.Accuracy),
			formatFloat(m.ValLoss), formatFloat(m.ValAccuracy),
		})
		logWriter.Flush()
		if err := logWriter.Error(); err != nil {
			return history, fmt.Errorf("write training log: %w", err)
		}
		if tr.Journal != nil {
			if err := tr.Journal.RecordEpoch(runID, m); err != nil {
				return history, err
			}
		}
	}

	if err := rnn.SaveModel(tr.Model, tr.Cfg.ModelPath); err != nil {
		return history, fmt.Errorf("save model: %w", err)
	}
	fmt.Printf("✅ Saved model to %s\n", tr.Cfg.ModelPath)
	return history, nil
}

// Step runs one optimizer update on batch. Rows are spread over the
// gradient workers; their gradients are summed in worker order, averaged
// over the scored (non padding) positions, clipped by global norm and
// applied with Adam.
func (tr *Trainer) Step(batch IO.Batch) rnn.StepStats {
	stats := make([]rnn.StepStats, len(tr.workers))
	var wg sync.WaitGroup
	for w, clone := range tr.workers {
		wg.Add(1)
		go func(w int, clone *rnn.Model) {
			defer wg.Done()
			clone.ZeroGrad()
			for i := w; i < batch.Size(); i += len(tr.workers) {
				n := batch.Lengths[i]
				stats[w].Add(clone.LossAndGrad(batch.Inputs[i][:n], batch.Targets[i][:n], true))
			}
		}(w, clone)
	}
	wg.Wait()

	m := tr.Model
	m.ZeroGrad()
	var st rnn.StepStats
	for w, clone := range tr.workers {
		st.Add(stats[w])
		m.AddGrads(clone)
	}
	if st.Tokens == 0 {
		return st
	}

	ps := m.Params()
	grads := make([]*mat.Dense, len(ps))
	scale := 1 / float64(st.Tokens)
	for i, p := range ps {
		p.G.Scale(scale, p.G)
		grads[i] = p.G
	}
	utils.ClipGrads(tr.Cfg.GradClip, grads...)
	tr.opt.Step(ps...)
	return st
}

// Evaluate scores up to steps batches of it from the start, or every batch
// when steps <= 0. Weights are not touched.
func Evaluate(m *rnn.Model, it *IO.BatchIterator, steps int) rnn.StepStats {
	var st rnn.StepStats
	it.Reset()
	for s := 0; steps <= 0 || s < steps; s++ {
		batch, ok := it.Next()
		if !ok {
			break
		}
		for i := 0; i < batch.Size(); i++ {
			n := batch.Lengths[i]
			st.Add(m.LossAndGrad(batch.Inputs[i][:n], batch.Targets[i][:n], false))
		}
	}
	return st
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
