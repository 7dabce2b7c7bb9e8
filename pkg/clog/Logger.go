package clog

import "fmt"
import "os"
import "strings"
import "time"

import "github.com/lapis-ps/paramserver/pkg/utils"


//=========================================== Custom Log


/*
	create a new named logger.

	every package that logs owns one package-level instance, e.g.:
		var Log = clog.NewCustomLog(NAME)
*/

func NewCustomLog(name string) *CustomLog {
	return &CustomLog{
		Name: name,
	}
}

func (cLog *CustomLog) Debug(msg ...interface{}) {
	cLog.formatOutput(Debug, msg)
}

func (cLog *CustomLog) Error(msg ...interface{}) {
	cLog.formatOutput(Error, msg)
}

func (cLog *CustomLog) Info(msg ...interface{}) {
	cLog.formatOutput(Info, msg)
}

func (cLog *CustomLog) Warn(msg ...interface{}) {
	cLog.formatOutput(Warn, msg)
}

/*
	Fatal logs at Fatal level and terminates the process.

	used for ConfigError/ProtocolError conditions, where the core has no
	meaningful local recovery (spec.md §7: schema and configuration faults
	are surfaced as process termination).
*/

func (cLog *CustomLog) Fatal(msg ...interface{}) {
	cLog.formatOutput(Fatal, msg)
	os.Exit(1)
}

func (cLog *CustomLog) formatOutput(level LogLevel, msg []interface{}) {
	currTime := time.Now()
	formattedTime := currTime.Format("2006-01-02 15:04:05.000")

	encodedMsg := func() string {
		encodeTransform := func(chunk interface{}) string {
			if s, ok := chunk.(string); ok { return s }

			encoded, _ := utils.EncodeStructToString[interface{}](chunk)
			return encoded
		}

		encodedChunks := utils.Map[interface{}, string](msg, encodeTransform)
		return strings.Join(encodedChunks, " ")
	}()

	color := func() LogColor {
		switch level {
			case Debug: return DebugColor
			case Error: return ErrorColor
			case Warn: return WarnColor
			case Fatal: return FatalColor
			default: return InfoColor
		}
	}()

	fmt.Printf("%s[%s](%s) %s: %s\n", color, cLog.Name, formattedTime, Bold + string(level), Reset + encodedMsg)
}
