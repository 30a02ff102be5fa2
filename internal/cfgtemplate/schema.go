package cfgtemplate

type document struct {
	CommonEventArgs commonEventArgs `yaml:"common_event_args"`
	DownloadArgs    downloadArgs    `yaml:"download_args"`
	UploadArgs      uploadArgs      `yaml:"upload_args"`
}

type commonEventArgs struct {
	AutoRender    bool `yaml:"auto_render"`
	AutoUpload    bool `yaml:"auto_upload"`
	AutoTranscode bool `yaml:"auto_transcode"`
}

type downloadArgs struct {
	DLType     string `yaml:"dltype"`
	URL        string `yaml:"url"`
	OutputDir  string `yaml:"output_dir"`
	OutputName string `yaml:"output_name"`
	Segment    int    `yaml:"segment"`
	Engine     string `yaml:"engine"`
	Danmaku    bool   `yaml:"danmaku"`
	Video      bool   `yaml:"video"`
}

type uploadArgs struct {
	SrcVideo videoUpload `yaml:"src_video"`
}

// Nil pointers render as null, which the recording tool reads as "use default".
type videoUpload struct {
	Account   string  `yaml:"account"`
	Cookies   *string `yaml:"cookies"`
	Retry     int     `yaml:"retry"`
	Realtime  bool    `yaml:"realtime"`
	MinLength int     `yaml:"min_length"`
	Line      *string `yaml:"line"`
	Limit     int     `yaml:"limit"`
	Copyright int     `yaml:"copyright"`
	Source    string  `yaml:"source"`
	TID       int     `yaml:"tid"`
	Cover     string  `yaml:"cover"`
	Title     string  `yaml:"title"`
	Desc      string  `yaml:"desc"`
	Tag       string  `yaml:"tag"`
	DTime     int     `yaml:"dtime"`
	Dolby     int     `yaml:"dolby"`
	NoReprint int     `yaml:"no_reprint"`
	OpenElec  int     `yaml:"open_elec"`
	Dynamic   string  `yaml:"dynamic"`
}
