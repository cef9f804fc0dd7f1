package churches

import _ "embed"

//go:embed data_demo_church.json
var DemoData []byte
