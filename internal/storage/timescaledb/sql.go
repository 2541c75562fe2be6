package timescaledb

const createTableSQL = `CREATE TABLE IF NOT EXISTS weather (
    time timestamptz NOT NULL,
    stationname text NOT NULL,
    stationtype text,
    temperature double precision,
    humidity double precision,
    pressure double precision,
    windspeed double precision,
    windgust double precision,
    winddir double precision,
    windcompass text,
    winddescription text,
    lowbattery boolean,
    raincounter integer,
    rainaccumulated double precision,
    rainrate double precision,
    raindescription text,
    uvintensity double precision,
    uvindex integer,
    illuminance double precision,
    lightdescription text,
    night boolean
);`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb;`

const createHypertableSQL = `SELECT create_hypertable('weather', 'time', if_not_exists => TRUE);`
