// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Viewport  ViewportConfig  `yaml:"viewport"`
	Controls  ControlsConfig  `yaml:"controls"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Loader    LoaderConfig    `yaml:"loader"`
	Service   ServiceConfig   `yaml:"service"`
	Remote    RemoteConfig    `yaml:"remote"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphicsConfig holds window and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Shadows    bool `yaml:"shadows"`
}

// ViewportConfig holds camera and scene settings.
type ViewportConfig struct {
	Mode          string     `yaml:"mode"` // "panorama" or "object"
	Mesh          string     `yaml:"mesh"` // mesh loaded at startup, optional
	FOV           float64    `yaml:"fov"`  // degrees; 0 selects the mode default
	Near          float64    `yaml:"near"`
	Far           float64    `yaml:"far"`
	ClearColor    [3]float32 `yaml:"clear_color"`
	SpinRate      float64    `yaml:"spin_rate"` // placeholder rotation, rad/s
	ScreenshotDir string     `yaml:"screenshot_dir"`
}

// ControlsConfig holds interaction controller settings.
type ControlsConfig struct {
	Damping       bool    `yaml:"damping"`
	DampingFactor float64 `yaml:"damping_factor"`
	RotateSpeed   float64 `yaml:"rotate_speed"` // 0 selects the mode default
	ZoomSpeed     float64 `yaml:"zoom_speed"`
	PanSpeed      float64 `yaml:"pan_speed"`
	KeyPanSpeed   float64 `yaml:"key_pan_speed"` // world units per second
	MinZoom       float64 `yaml:"min_zoom"`
	MaxZoom       float64 `yaml:"max_zoom"`
}

// NormalizeConfig holds mesh normalization targets.
type NormalizeConfig struct {
	ObjectSize     float64    `yaml:"object_size"`
	PanoramaSize   float64    `yaml:"panorama_size"`
	PanoramaOffset [3]float32 `yaml:"panorama_offset"`
}

// LoaderConfig holds asset fetch settings.
type LoaderConfig struct {
	BasePath       string        `yaml:"base_path"`
	StagingDir     string        `yaml:"staging_dir"`
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"user_agent"`
	MaxTextureSize int           `yaml:"max_texture_size"`
}

// ServiceConfig holds the conversion service endpoint.
type ServiceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RemoteConfig holds the remote control bridge and IMU feed settings.
type RemoteConfig struct {
	Listen     string `yaml:"listen"` // websocket bridge address, empty disables
	SerialPort string `yaml:"serial_port"`
	BaudRate   int    `yaml:"baud_rate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Shadows:    false,
		},
		Viewport: ViewportConfig{
			Mode:          "panorama",
			ClearColor:    [3]float32{0.1, 0.1, 0.1},
			SpinRate:      0.6,
			ScreenshotDir: "screenshots",
		},
		Controls: ControlsConfig{
			Damping:       true,
			DampingFactor: 0.05,
			ZoomSpeed:     1.0,
			PanSpeed:      1.0,
			KeyPanSpeed:   2.0,
			MinZoom:       0.25,
			MaxZoom:       4.0,
		},
		Normalize: NormalizeConfig{
			ObjectSize:     2,
			PanoramaSize:   2000,
			PanoramaOffset: [3]float32{100, 120, 80},
		},
		Loader: LoaderConfig{
			Timeout:        60 * time.Second,
			UserAgent:      "relive/1.0",
			MaxTextureSize: 4096,
		},
		Service: ServiceConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 5 * time.Minute,
		},
		Remote: RemoteConfig{
			BaudRate: 115200,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
