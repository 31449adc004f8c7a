// Command ldmcheck replays every scenario file in a directory and reports
// pass/fail, generalizing the teacher's main.go (parseDir/initTestCases,
// one run() per TestCase) from a benchmark driver into a convergence
// checker.
package main

import (
	"flag"
	"log"

	"github.com/Lz-Gustavo/ldm/ldmconfig"
	"github.com/Lz-Gustavo/ldm/scenario"
)

func main() {
	dir := flag.String("dir", "./testdata/scenarios", "directory of .toml scenario files to replay")
	cfgPath := flag.String("config", "", "optional ldmconfig TOML file; defaults applied otherwise")
	flag.Parse()

	cfg := ldmconfig.DefaultConfig()
	if *cfgPath != "" {
		loaded, err := ldmconfig.Load(*cfgPath)
		if err != nil {
			log.Fatalln("could not load config:", err.Error())
		}
		cfg = loaded
	}

	scenarios, err := scenario.LoadDir(*dir)
	if err != nil {
		log.Fatalln("could not load scenarios:", err.Error())
	}

	failures := 0
	for _, sc := range scenarios {
		res, err := scenario.Run(sc, cfg)
		if err != nil {
			log.Printf("FAIL %s: %s\n", sc.Name, err.Error())
			failures++
			continue
		}
		if !res.Converged {
			log.Printf("FAIL %s: %s\n", sc.Name, res.Mismatch)
			failures++
			continue
		}
		log.Printf("PASS %s\n", sc.Name)
	}

	if failures > 0 {
		log.Fatalf("%d/%d scenarios failed\n", failures, len(scenarios))
	}
}
