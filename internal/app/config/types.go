package config

type (
	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		RabbitMQ RabbitMQ
		Minio    Minio
		Logger   Logger
	}

	InternalConfig struct {
		App        App
		CarePlan   AppCarePlan
		Generation AppGeneration
		Worker     AppWorker
	}

	MongoDB struct {
		Host     string
		Port     string
		DbName   string
		Username string
		Password string
	}

	Redis struct {
		Host     string
		Port     string
		Password string
	}

	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}

	Minio struct {
		Host       string
		Port       string
		Username   string
		Password   string
		BucketName string
		UseSSL     bool
	}

	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}

	App struct {
		Env                      string
		Port                     string
		Timezone                 string
		EndpointPrefix           string
		MaxRequestsPerSecond     int
		ShutdownTimeoutInSeconds int
	}

	// AppCarePlan bounds the admission path.
	AppCarePlan struct {
		// SubmissionsPerMinute and SubmissionsPerDay are the limiter ceilings
		// for the sliding minute/day counters.
		SubmissionsPerMinute int
		SubmissionsPerDay    int
		// ValidationRetryAttempts bounds re-validation after a uniqueness
		// conflict at persistence time.
		ValidationRetryAttempts int
	}

	// AppGeneration configures the text generation collaborator.
	AppGeneration struct {
		BaseURL                 string
		APIKey                  string
		Model                   string
		UseMock                 bool
		RequestTimeoutInSeconds int
		RateLimitRPM            int
		MaxTokens               int
	}

	// AppWorker configures the generation worker pool and the pending sweep.
	AppWorker struct {
		PoolSize                 int
		Prefetch                 int
		MaxRetries               int
		RetryBaseDelayInMillis   int
		RetryMaxDelayInMillis    int
		SweepIntervalInSeconds   int
		PendingRequeueAgeInSecs  int
		ProcessingStaleAgeInSecs int
		GenerationTimeoutInSecs  int
	}
)
