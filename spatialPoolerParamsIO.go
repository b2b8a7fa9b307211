//
// Code related to exchanging spatial pooler parameter records
//

package htm

import (
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

//Loads parameters from a YAML file. Keys missing from the file keep their
//NewSpParams defaults. ${VAR} references are replaced with environment
//values before parsing.
func LoadSpParams(path string) (SpParams, error) {
	params := NewSpParams()

	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("failed to read params file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), &params); err != nil {
		return params, fmt.Errorf("failed to parse params YAML: %w", err)
	}

	return params, nil
}

//Saves parameters to a YAML file
func SaveSpParams(path string, params SpParams) error {
	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write params file: %w", err)
	}

	return nil
}

func MarshalSpParamsJSON(params SpParams) ([]byte, error) {
	return json.MarshalIndent(params, "", "  ")
}

//Decodes a JSON record on top of the defaults
func UnmarshalSpParamsJSON(data []byte) (SpParams, error) {
	params := NewSpParams()
	if err := json.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("failed to parse params JSON: %w", err)
	}
	return params, nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		content = content[:start] + os.Getenv(varName) + content[end+1:]
	}
	return content
}

//Human readable dump of the parameters
func (p SpParams) ToString() string {
	result := "Spatial pooler params: \n"

	result += fmt.Sprintf("InputDimensions %v \n", p.InputDimensions)
	result += fmt.Sprintf("ColumnDimensions %v \n", p.ColumnDimensions)
	result += fmt.Sprintf("PotentialRadius %v \n", p.PotentialRadius)
	result += fmt.Sprintf("PotentialPct %v \n", p.PotentialPct)
	result += fmt.Sprintf("GlobalInhibition %v \n", p.GlobalInhibition)
	result += fmt.Sprintf("LocalAreaDensity %v \n", p.LocalAreaDensity)
	result += fmt.Sprintf("MaxLocalAreaDensity %v \n", p.MaxLocalAreaDensity)
	result += fmt.Sprintf("StimulusThreshold %v \n", p.StimulusThreshold)
	result += fmt.Sprintf("SynPermInactiveDec %v \n", p.SynPermInactiveDec)
	result += fmt.Sprintf("SynPermActiveInc %v \n", p.SynPermActiveInc)
	result += fmt.Sprintf("SynPermConnected %v \n", p.SynPermConnected)
	result += fmt.Sprintf("SynPermBelowStimulusInc %v \n", p.SynPermBelowStimulusInc)
	result += fmt.Sprintf("SynPermMin %v \n", p.SynPermMin)
	result += fmt.Sprintf("SynPermMax %v \n", p.SynPermMax)
	result += fmt.Sprintf("SynPermTrimThreshold %v \n", p.SynPermTrimThreshold)
	result += fmt.Sprintf("InitPermanence %v \n", p.InitPermanence)
	result += fmt.Sprintf("ConstantInitPermanence %v \n", p.ConstantInitPermanence)
	result += fmt.Sprintf("InitConnectedPct %v \n", p.InitConnectedPct)
	result += fmt.Sprintf("MinPctOverlapDutyCycles %v \n", p.MinPctOverlapDutyCycles)
	result += fmt.Sprintf("DutyCyclePeriod %v \n", p.DutyCyclePeriod)
	result += fmt.Sprintf("UpdatePeriod %v \n", p.UpdatePeriod)
	result += fmt.Sprintf("BoostStrength %v \n", p.BoostStrength)
	result += fmt.Sprintf("Seed %v \n", p.Seed)
	result += fmt.Sprintf("SpVerbosity %v \n", p.SpVerbosity)
	result += fmt.Sprintf("WrapAround %v \n", p.WrapAround)
	result += fmt.Sprintf("Workers %v \n", p.Workers)

	return result
}
