package genesis_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Load(t *testing.T) {
	t.Log("Given the need to load the genesis information.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen no path is provided.", testID)
		{
			gen, err := genesis.Load("")
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the default: %v", failed, testID, err)
			}
			if gen.Difficulty != genesis.DefaultDifficulty || gen.MiningReward != genesis.DefaultMiningReward {
				t.Fatalf("\t%s\tTest %d:\tShould get the default values, got %+v.", failed, testID, gen)
			}
			t.Logf("\t%s\tTest %d:\tShould get the default values.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a partial file is provided.", testID)
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(`{"date":"2026-03-01T00:00:00Z","difficulty":2}`), 0600); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the file: %v", failed, testID, err)
			}

			gen, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the file: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to load the file.", success, testID)

			exp := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
			if gen.Difficulty != 2 || !gen.Date.Equal(exp) || gen.MiningReward != genesis.DefaultMiningReward {
				t.Fatalf("\t%s\tTest %d:\tShould merge file values over defaults, got %+v.", failed, testID, gen)
			}
			t.Logf("\t%s\tTest %d:\tShould merge file values over defaults.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the file does not exist.", testID)
		{
			if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail to load a missing file.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould fail to load a missing file.", success, testID)
		}
	}
}
