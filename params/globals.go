package params

// Special tokens. <pad> is never written to vocab.json, it only exists
// as id 0 inside padded batches and windows.
const (
	PadToken = "<pad>"
	UnkToken = "<unk>"
	PadID    = 0
	UnkID    = 1
)

type TrainingConfig struct {
	// Core model parameters
	EmbedDim   int `yaml:"embed_dim"`   // embedding width
	HiddenSize int `yaml:"hidden_size"` // LSTM units
	VocabSize  int `yaml:"vocab_size"`  // most frequent words kept
	Window     int `yaml:"window"`      // inference context (num in tokens)

	// Optimization parameters
	LearningRate float64 `yaml:"learning_rate"`
	AdamBeta1    float64 `yaml:"adam_beta1"` // default 0.9
	AdamBeta2    float64 `yaml:"adam_beta2"` // default 0.999
	AdamEps      float64 `yaml:"adam_eps"`   // default 1e-7
	GradClip     float64 `yaml:"grad_clip"`  // <=0 disables

	Epochs          int   `yaml:"epochs"`
	StepsPerEpoch   int   `yaml:"steps_per_epoch"`  // train batches per epoch
	ValidationSteps int   `yaml:"validation_steps"` // val batches per epoch
	BatchSize       int   `yaml:"batch_size"`
	Seed            int64 `yaml:"seed"`    // weight init seed
	Workers         int   `yaml:"workers"` // gradient goroutines, 0 = GOMAXPROCS

	// Files
	TrainPath    string `yaml:"train_path"`
	ValPath      string `yaml:"val_path"`
	VocabPath    string `yaml:"vocab_path"`
	ModelPath    string `yaml:"model_path"`
	TrainIDsPath string `yaml:"train_ids_prefix"` // token id cache prefix
	ValIDsPath   string `yaml:"val_ids_prefix"`
	LogPath      string `yaml:"log_path"`     // per-epoch CSV
	JournalPath  string `yaml:"journal_path"` // sqlite run history

	// Server
	Addr      string `yaml:"addr"`
	ServerURL string `yaml:"server_url"` // used by -cli
}

var Config = TrainingConfig{
	EmbedDim:   128,
	HiddenSize: 256,
	VocabSize:  20000,
	Window:     10,

	LearningRate: 0.001,
	AdamBeta1:    0.9,
	AdamBeta2:    0.999,
	AdamEps:      1e-7,
	GradClip:     5.0,

	Epochs:          10,
	StepsPerEpoch:   100, // limit training to 100 iterations per epoch
	ValidationSteps: 50,
	BatchSize:       32,
	Seed:            42,

	TrainPath:    "data/raw/wiki_train.txt",
	ValPath:      "data/raw/wiki_val.txt",
	VocabPath:    "vocab.json",
	ModelPath:    "next_word_model.gob",
	TrainIDsPath: "data/ids/wiki_train_ids",
	ValIDsPath:   "data/ids/wiki_val_ids",
	LogPath:      "training_log.csv",
	JournalPath:  "training.db",

	Addr:      ":8000",
	ServerURL: "http://127.0.0.1:8000",
}
