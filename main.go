package main

import (
	"os"
	"os/signal"
	"syscall"
)

const version = "0.3"

func getAboutStr() string {
	return "civremote " + version + " - knob remote for CI-V receivers"
}

func main() {
	parseArgs()
	log.init()
	defer log.sync()

	log.Print(getAboutStr())

	codec := newCIVCodec(civAddress, controllerAddress, minFreqFrameLen)
	radio := newCIVControl(codec, autoStep, log.named("civ"))
	radio.debugPackets = debugPackets

	st := newSerialStream(serialPortName, serialBaudRate, serialReadTimeout)
	if err := st.Open(); err != nil {
		log.Error(err, ", continuing without the receiver")
	} else {
		log.Print("opened ", serialPortName, " at ", serialBaudRate, " baud")
		radio.attach(st)
	}
	radio.init()

	remote := newRemoteControl(remoteConfig{
		layout: hidLayout{
			knobOffset:   defaultKnobOffset,
			buttonOffset: defaultButtonOffset,
			masks:        buttonMasks,
		},
		sensitivity: knobSensitivity,
		longPress:   longPressDuration,
		presets:     presets,
	}, radio, log.named("remote"))

	var hidSrc hidSource
	if d, err := openHIDDevice(hidVendorID, hidProductID); err != nil {
		log.Error(err, ", continuing without the remote")
	} else {
		hidSrc = d
	}

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, os.Interrupt, syscall.SIGTERM)

	statusLog.startPeriodicPrint(radio, remote)

	p := newPoller(radio, remote, hidSrc, hidPollTimeout, log.named("poll"))
	p.run(osSignal)

	statusLog.stopPeriodicPrint()
	if err := p.close(); err != nil {
		log.Error("close: ", err)
	}
	log.Print("exiting")
}
