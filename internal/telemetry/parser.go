package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Dicklesworthstone/pcmonitor/internal/model"
)

// MinFields is the minimum record schema:
// cpu,mem,gpu,diskPct,diskMBps,cpuTempF,gpuTempF,freeC_GB,freeD_GB[,indoorTempF]
const MinFields = 9

const (
	// Wire markers the feeder sends for readings it could not take.
	missingTemp = -100.0
	missingFree = 0.0

	// Fields beyond this are never looked at.
	maxFields = 16
)

// Parse decodes one record. Records with fewer than MinFields fields are
// rejected and the caller keeps its previous snapshot. Non-numeric fields
// decode as 0.
func Parse(line string, now time.Time) (model.Stats, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < MinFields {
		log.Debug().Int("fields", len(parts)).Str("record", line).Msg("telemetry: record rejected")
		return model.Stats{}, false
	}
	if len(parts) > maxFields {
		parts = parts[:maxFields]
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		vals[i] = parseFloat(p)
	}

	s := model.Stats{
		CPU:      vals[0],
		Mem:      vals[1],
		GPU:      vals[2],
		DiskPct:  vals[3],
		DiskMBps: vals[4],
		CPUTempF: temp(vals[5]),
		GPUTempF: temp(vals[6]),
		FreeC:    free(vals[7]),
		FreeD:    free(vals[8]),
		Updated:  now,
	}
	if len(vals) > MinFields {
		s.IndoorTempF = temp(vals[9])
	} else {
		s.IndoorTempF = s.CPUTempF
	}
	return s, true
}

// Format encodes s as a record terminated by '\n', using the wire markers
// for missing readings. Field precision matches the host feeder.
func Format(s model.Stats) string {
	return fmt.Sprintf("%.1f,%.1f,%.1f,%.1f,%.2f,%.1f,%.1f,%.0f,%.0f\n",
		s.CPU, s.Mem, s.GPU, s.DiskPct, s.DiskMBps,
		s.CPUTempF.Or(-999), s.GPUTempF.Or(-999),
		s.FreeC.Or(-1), s.FreeD.Or(-1))
}

func temp(v float64) model.Optional {
	if v < missingTemp {
		return model.None()
	}
	return model.Some(v)
}

func free(v float64) model.Optional {
	if v < missingFree {
		return model.None()
	}
	return model.Some(v)
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
